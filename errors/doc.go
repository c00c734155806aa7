// Package errors defines AppError and the codes whisperd answers with.
// Every failure that reaches a client is rendered as {"message", "code"}.
package errors
