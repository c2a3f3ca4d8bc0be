package apperr

import "github.com/tuanvumaihuynh/planner-shop/pkg/zerror"

const (
	ValidationErrorCode         = "VALIDATION_FAILED"
	ProductNotFoundCode         = "PRODUCT_NOT_FOUND"
	SkuConflictCode             = "SKU_ALREADY_EXISTS"
	ProductImageInvalidCode     = "PRODUCT_IMAGE_INVALID"
	ImportFileInvalidCode       = "IMPORT_FILE_INVALID"
	ImportFileNotFoundCode      = "IMPORT_FILE_NOT_FOUND"
	ImportFileNameInvalidCode   = "IMPORT_FILE_NAME_INVALID"
	UnsupportedExportFormatCode = "UNSUPPORTED_EXPORT_FORMAT"
	UploadTooLargeCode          = "UPLOAD_TOO_LARGE"
	ServiceUnhealthyCode        = "SERVICE_UNHEALTHY"
	RouteNotFoundCode           = "ROUTE_NOT_FOUND"
	MethodNotAllowedCode        = "METHOD_NOT_ALLOWED"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	ProductNotFoundErr     = zerror.NewNotFound(ProductNotFoundCode, "product not found")
	SkuConflictErr         = zerror.NewConflict(SkuConflictCode, "sku already exists")
	ProductImageInvalidErr = zerror.NewBadRequest(ProductImageInvalidCode, "image must be a jpg, jpeg, png, gif or webp file")

	// ImportFileInvalidErr aborts a whole import: the upload is not usable JSON.
	ImportFileInvalidErr       = zerror.NewBadRequest(ImportFileInvalidCode, "import file is not valid JSON")
	ImportFileNotFoundErr      = zerror.NewNotFound(ImportFileNotFoundCode, "file not found")
	ImportFileNameInvalidErr   = zerror.NewBadRequest(ImportFileNameInvalidCode, "only .json files can be imported")
	UnsupportedExportFormatErr = zerror.NewBadRequest(UnsupportedExportFormatCode, "export format must be json or xml")
	UploadTooLargeErr          = zerror.NewBadRequest(UploadTooLargeCode, "upload is too large")

	ServiceUnhealthyErr = zerror.NewServiceUnavailable(ServiceUnhealthyCode, "service is unhealthy")
	RouteNotFoundErr    = zerror.NewNotFound(RouteNotFoundCode, "route not found")
	MethodNotAllowedErr = zerror.NewMethodNotAllowed(MethodNotAllowedCode, "method not allowed")
)
