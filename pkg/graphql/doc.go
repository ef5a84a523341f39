// Package graphql is a small GraphQL-over-HTTP client. Requests carry a
// constant query document plus a variables map, so free text such as titles
// or rich-text descriptions never gets spliced into the query itself.
// Credentials from the attached Session are sent only when a request opts in
// via WithCredentials. Failures are reported as *NetworkError (transport or
// non-2xx status), *MalformedResponseError (body does not decode into the
// expected shape) or *ResponseError (the server populated "errors").
package graphql
