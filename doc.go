// Package storyform wires the "create a new story" workflow: reference data
// fetched over GraphQL, a form with a rich-text description, and a
// submission state machine that sends the create-story mutation.
//
// Most callers only need New and NewComposer:
//
//	wf, err := storyform.New(endpoint, storyform.WithToken(token))
//	if err != nil {
//		return err
//	}
//	defer wf.Close()
//	if err := wf.Mount(ctx); err != nil {
//		return err
//	}
//
// The packages under pkg/ expose each piece on its own.
package storyform
