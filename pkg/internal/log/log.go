package storelog

import (
	"fmt"

	"go.uber.org/zap"
)

// headMsg is a distinctive part of all messages.
const headMsg = "record store operation"

// Write writes message about record store's operation to logger.
func Write(logger *zap.Logger, fields ...zap.Field) {
	logger.Debug(headMsg, fields...)
}

// IDField returns logger's field for the record identifier.
func IDField(id fmt.Stringer) zap.Field {
	return zap.Stringer("id", id)
}

// OpField returns logger's field for operation type.
func OpField(op string) zap.Field {
	return zap.String("op", op)
}

// StorageTypeField returns logger's field for storage type.
func StorageTypeField(typ string) zap.Field {
	return zap.String("type", typ)
}

// IndexField returns logger's field for the unique index value.
func IndexField(key, value string) zap.Field {
	return zap.String("index."+key, value)
}

// PathField returns logger's field for the namespace path.
func PathField(p string) zap.Field {
	return zap.String("path", p)
}
