package errors

// ErrorBuilder assembles a ClassifiedError step by step.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts a builder with error severity and no retry.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
	}}
}

// WrapError starts a builder around an existing cause.
func WrapError(err error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(err)
}

func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.err.severity = severity
	return b
}

func (b *ErrorBuilder) WithRetry(strategy RetryStrategy) *ErrorBuilder {
	b.err.retry = strategy
	return b
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

// WithContext records a diagnostic key. Values are shown by the CLI in
// verbose mode and logged by stores.
func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.Set(key, value)
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder      { return b.WithSeverity(SeverityFatal) }
func (b *ErrorBuilder) Warning() *ErrorBuilder    { return b.WithSeverity(SeverityWarning) }
func (b *ErrorBuilder) Retryable() *ErrorBuilder  { return b.WithRetry(RetryBackoff) }
func (b *ErrorBuilder) UserAction() *ErrorBuilder { return b.WithRetry(RetryUserAction) }

// Build returns the error. The builder may be reused; later changes do not
// leak into errors already built.
func (b *ErrorBuilder) Build() *ClassifiedError {
	e := b.err
	e.context = ErrorContext{}.Merge(b.err.context)
	return &e
}

// Category shortcuts. Their default severity and retry strategy encode how
// the store graph treats each failure class.

func ConfigError(message string) *ErrorBuilder     { return NewError(CategoryConfig, message).Fatal() }
func ValidationError(message string) *ErrorBuilder { return NewError(CategoryValidation, message).Fatal() }
func NotFoundError(message string) *ErrorBuilder   { return NewError(CategoryNotFound, message) }
func DaemonError(message string) *ErrorBuilder     { return NewError(CategoryDaemon, message).Retryable() }
func IdentityError(message string) *ErrorBuilder   { return NewError(CategoryIdentity, message) }
func IPCError(message string) *ErrorBuilder        { return NewError(CategoryIPC, message).Retryable() }
func NetworkError(message string) *ErrorBuilder    { return NewError(CategoryNetwork, message).Retryable() }
func StorageError(message string) *ErrorBuilder    { return NewError(CategoryStorage, message) }
func OnboardingError(message string) *ErrorBuilder { return NewError(CategoryOnboarding, message) }
func RuntimeError(message string) *ErrorBuilder    { return NewError(CategoryRuntime, message).Fatal() }
func InternalError(message string) *ErrorBuilder   { return NewError(CategoryInternal, message).Fatal() }
