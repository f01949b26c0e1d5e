package database

import "github.com/appwire/framework/pkg/errors"

var newDatabaseCode = errors.WithPrefix("DATABASE")

var (
	ErrOpen        = newDatabaseCode().New("could not open {{.driver}} database")
	ErrUnreachable = newDatabaseCode().New("{{.driver}} database did not answer after {{.attempts}} attempts")
)
