// Package request turns raw CLI arguments and web form fields into a
// validated Request. Validation is pure: nothing here touches the
// filesystem or network, so a rejected request leaves no state behind.
package request
