// Package pgutil - общие куски для SQL репозиториев
package pgutil

import (
	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// Builder - squirrel с плейсхолдерами postgres ($1, $2...)
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// NullUUID превращает uuid.Nil в NULL
func NullUUID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}
