// Package cli provides the drinksctl command-line interface for the drinks API.
//
// # Commands
//
// list: Show every drink title (public, no token needed)
//
//	drinksctl list --server http://localhost:8080
//
// detail: Show every drink with its recipe
//
//	drinksctl detail
//
// create: Add a drink
//
//	drinksctl create \
//		--title "Flat White" \
//		--recipe '[{"name":"milk","color":"white","parts":2},{"name":"espresso","color":"brown","parts":1}]'
//
// update: Replace a drink's title and recipe
//
//	drinksctl update --id 3 --title "Cortado" --recipe-file cortado.json
//
// delete: Remove a drink
//
//	drinksctl delete --id 3
//
// # Authentication
//
// Protected commands take either a ready bearer token (--token or
// DRINKS_TOKEN) or machine credentials, in which case a token is obtained with
// the OAuth2 client credentials grant:
//
//	AUTH0_DOMAIN=shop.eu.auth0.com API_AUDIENCE=drinks \
//	AUTH0_CLIENT_ID=... AUTH0_CLIENT_SECRET=... drinksctl detail
//
// Every flag falls back to its environment variable, and the server URL to
// DRINKS_SERVER.
package cli
