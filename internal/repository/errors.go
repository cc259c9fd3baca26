// Package repository provides MySQL data access for the check engine and
// the staff auth surface. Domain errors (revision conflicts, closed
// checks, merge rejections) live in the ledger package and are returned
// from here unchanged so handlers can errors.Is against one taxonomy;
// this file only declares sentinels for concerns local to persistence.
package repository

import "errors"

// ErrEmailExists is returned when staff registration hits the unique
// email index. Handlers translate this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")
