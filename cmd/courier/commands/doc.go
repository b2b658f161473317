// Package commands implements the courier CLI.
//
// Commands:
//
//	init        create an endpoint and provision its inbox
//	thumbprint  print the local thumbprint
//	publish     publish a signed address book entry
//	lookup      resolve and verify an endpoint
//	contacts    pin and list contacts
//	send        post a payload to one or more recipients
//	recv        receive pending payloads
//	delete      delete an inbox item
//	watch       receive payloads as they are pushed
package commands
