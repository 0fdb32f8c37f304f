/*
Package officesdk is a Go client for the Escritório back office API.

# SDKClient and Session

An SDKClient performs the unauthenticated calls and logs users in:

	client := officesdk.NewSDKClient("https://backoffice.example.com")
	session, err := client.Login(ctx, "contadora", password, otp)

A Session carries the token pair and refreshes the access token shortly
before it expires, so long lived sessions keep working.

# Errors

Every non-2xx answer is returned as an *APIError. Message gives the text to
show a user: the server's description or FallbackMessage. Validation
failures also carry per-field messages in Fields.

# Reconciliation screens

GetReconciliationDetail falls back to the legacy endpoints when the
consolidated one fails, tagging lines and computing totals locally.
UpdateTransaction falls back to the confirm endpoint on 404 or 405.
FinalizeReconciliation refuses a detail with pending lines before sending
anything, and LoadReconciliationView loads the detail and the chart of
accounts in parallel, each with its own error.

# Chat

WatchChat follows the server sent event stream. Events carry only the
thread id; callers refetch messages when one arrives.
*/
package officesdk
