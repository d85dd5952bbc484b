package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ConfigInvalid(field, reason string) *BuildError {
	return New(CategoryConfig, SeverityFatal, "invalid configuration").
		WithContext("field", field).
		WithContext("reason", reason)
}

func ValidationFailed(field, reason string) *BuildError {
	return New(CategoryValidation, SeverityError, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Model resolution errors

func ResolutionFailed(spec string, cause error) *BuildError {
	return Wrap(cause, CategoryResolution, SeverityError, "model resolution failed").
		WithContext("model", spec)
}

func InvalidModel(spec string) *BuildError {
	return New(CategoryResolution, SeverityError, "invalid model").
		WithContext("model", spec)
}

func UnexpectedModelType(typeName string) *BuildError {
	return New(CategoryResolution, SeverityError, "unexpected model type").
		WithContext("type", typeName)
}

// Page pipeline errors

func ControllerFailed(view, controller string, cause error) *BuildError {
	return Wrap(cause, CategoryController, SeverityWarning, "controller failed").
		WithContext("view", view).
		WithContext("controller", controller)
}

func InvalidDynamicModel(view, typeName string) *BuildError {
	return New(CategoryDynamicModel, SeverityError, "data in dynamic model must be an array").
		WithContext("view", view).
		WithContext("type", typeName)
}

func RenderFailed(view string, cause error) *BuildError {
	return Wrap(cause, CategoryRender, SeverityError, "page render failed").
		WithContext("view", view)
}

func DuplicateOutput(view, outputPath string) *BuildError {
	return New(CategoryDuplicate, SeverityWarning, "page already registered for output").
		WithContext("view", view).
		WithContext("output", outputPath)
}

// File system errors

func FileSystemError(operation string, cause error) *BuildError {
	return Wrap(cause, CategoryFileSystem, SeverityFatal, "file system operation failed").
		WithContext("operation", operation)
}

// Internal errors

func InternalError(message string, cause error) *BuildError {
	return Wrap(cause, CategoryInternal, SeverityFatal, message)
}
