// Package client is a Go client for the drinks API.
//
// Protected routes need a bearer token. TokenClient fetches one from the
// identity provider with the OAuth2 client credentials grant and renews it
// when it expires:
//
//	httpClient := client.TokenClient(ctx, client.CredentialsConfig{
//		Domain:       "shop.eu.auth0.com",
//		Audience:     "drinks",
//		ClientID:     id,
//		ClientSecret: secret,
//	})
//	c := client.New("http://localhost:8080", httpClient)
//	drink, err := c.CreateDrink(ctx, "Latte", recipe)
//
// API failures are returned as *Error carrying the status and message of the
// error envelope.
package client
