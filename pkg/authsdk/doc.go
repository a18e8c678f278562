/*
Package authsdk is the client SDK and wire format for the bioauth service.

The request and response types in this package are shared with the server's
HTTP handlers, so the SDK and service cannot drift apart.

# Client vs Session

Client covers the unauthenticated endpoints: registration, the two login
paths and health checks. Every successful login or registration returns a
Session that carries the bearer token for the authenticated endpoints:

	client := authsdk.NewClient("https://bioauth.example.com")

	session, decision, err := client.LoginPassword(ctx, "alice", "hunter2")
	if err != nil {
		// transport or request error, see *authsdk.APIError
	}
	if !decision.Accepted {
		// authentication failure, decision.Reason says why
	}

	verdict, err := session.Verify(ctx, authsdk.ProbeRequest{Template: probe})
	stats, err := session.Stats(ctx)

# Failures vs errors

An authentication failure is not an error: it comes back as a
DecisionResponse with Accepted=false and a Reason such as "over_threshold".
Errors (*APIError) are reserved for malformed requests, unknown identities
and service outages.
*/
package authsdk
