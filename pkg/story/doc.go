// Package story wires the new story page together. A Workflow owns the
// reference datasets (categories, priorities, products, existing stories),
// the loading tracker that aggregates their fetches, the form state with its
// rich-text description adapter, and the submission controller.
//
// Mount fans the four fetches out concurrently. Each is tracked, so Busy
// stays true until the last one settles, and a failure only leaves its
// dataset empty. Close cancels whatever is still in flight and guarantees no
// state is written afterwards.
package story
