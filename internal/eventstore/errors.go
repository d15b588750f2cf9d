package eventstore

import (
	ferrors "git.home.luguber.info/inful/vpndesk/internal/foundation/errors"
)

// Sentinel errors for journal operations; compare with errors.Is.
var (
	ErrDatabaseOpenFailed     = ferrors.StorageError("could not open event journal database").Build()
	ErrInitializeSchemaFailed = ferrors.StorageError("failed to initialize event journal schema").Build()
	ErrEventAppendFailed      = ferrors.StorageError("failed to append event to journal").Build()
	ErrEventQueryFailed       = ferrors.StorageError("failed to query events from journal").Build()
	ErrEventScanFailed        = ferrors.StorageError("failed to scan journal rows").Build()
)

func wrap(sentinel *ferrors.ClassifiedError, cause error) error {
	return ferrors.WrapError(cause, sentinel.Category(), sentinel.Message()).Build()
}
