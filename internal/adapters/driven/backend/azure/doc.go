// Package azure provides a search backend adapter for Azure Cognitive Search.
//
// Requests are POSTed to the index's docs/search endpoint. Authentication
// uses either a query key in the api-key header or Microsoft Entra bearer
// tokens obtained with the client-credentials flow. Outgoing requests are
// throttled with a token bucket; failed requests are never retried.
package azure
