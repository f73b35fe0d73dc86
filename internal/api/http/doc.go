// Package http contains the gin handlers for the file server API. Every
// store operation is exposed as a JSON endpoint returning the
// {success, message, ...} result shape; typed store outcomes are mapped to
// transport status codes in one place (storeFail) and client-facing
// messages never carry filesystem detail.
package http
