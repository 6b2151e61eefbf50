package command

import (
	"github.com/goliatone/go-schema-registry/pkg/types"
	"github.com/google/uuid"
)

func safeLogger(logger types.Logger) types.Logger {
	if logger != nil {
		return logger
	}
	return types.NopLogger{}
}

func validateSchemaIDs(ids []uuid.UUID) error {
	if len(ids) == 0 {
		return ErrSchemaIDsRequired
	}
	for _, id := range ids {
		if id == uuid.Nil {
			return ErrSchemaIDRequired
		}
	}
	return nil
}
