package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/username/tradelens/src/logger"
	"github.com/username/tradelens/src/models"
	"github.com/username/tradelens/src/parsers"
	"github.com/username/tradelens/src/security/validation"
	"github.com/username/tradelens/src/services"
	"github.com/username/tradelens/src/utils"
)

// uploadOptions are the form fields sent alongside the file.
type uploadOptions struct {
	Method     string `validate:"omitempty,oneof=FIFO LIFO"`
	Symbol     string `validate:"omitempty,alphanum,max=20"`
	MarketData bool
}

type UploadHandler struct {
	uploadService  services.UploadService
	validate       *validator.Validate
	maxUploadBytes int64
	defaultMethod  models.Method
}

func NewUploadHandler(service services.UploadService, maxUploadBytes int64, defaultMethod models.Method) *UploadHandler {
	return &UploadHandler{
		uploadService:  service,
		validate:       validator.New(),
		maxUploadBytes: maxUploadBytes,
		defaultMethod:  defaultMethod,
	}
}

func (h *UploadHandler) parseOptions(r *http.Request) (uploadOptions, error) {
	opts := uploadOptions{
		Method: strings.ToUpper(strings.TrimSpace(r.FormValue("method"))),
		Symbol: strings.TrimSpace(r.FormValue("symbol")),
	}
	if opts.Method == "" {
		opts.Method = string(h.defaultMethod)
	}
	if v := strings.TrimSpace(r.FormValue("marketData")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, fmt.Errorf("invalid marketData value %q", v)
		}
		opts.MarketData = b
	}

	if err := h.validate.Struct(&opts); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return opts, fmt.Errorf("invalid %s: failed '%s' check", strings.ToLower(fe.Field()), fe.Tag())
		}
		return opts, err
	}
	return opts, nil
}

func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		log.Warn("Failed to parse multipart form or request too large", "error", err, "limit", h.maxUploadBytes)
		utils.SendJSONError(w, fmt.Sprintf("Failed to parse form or request too large (max %d MB)", h.maxUploadBytes/(1024*1024)), http.StatusBadRequest)
		return
	}

	opts, err := h.parseOptions(r)
	if err != nil {
		log.Warn("Invalid upload options", "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		log.Warn("Failed to retrieve file from request", "error", err)
		utils.SendJSONError(w, "Failed to retrieve file from request. Ensure 'file' field is used.", http.StatusBadRequest)
		return
	}
	defer file.Close()

	clientContentType := fileHeader.Header.Get("Content-Type")
	if err := validation.ValidateClientContentType(clientContentType); err != nil {
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	detectedContentType, err := validation.ValidateFileContentByMagicBytes(file)
	if err != nil {
		log.Warn("Server-side file content validation failed", "filename", fileHeader.Filename, "error", err)
		utils.SendJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	fileName := validation.SanitizeFileName(fileHeader.Filename)
	log.Info("Processing upload request", "filename", fileName, "detectedType", detectedContentType, "method", opts.Method)

	result, err := h.uploadService.ProcessUpload(r.Context(), services.UploadRequest{
		File:        file,
		FileName:    fileName,
		ContentType: detectedContentType,
		UserID:      userID,
		Method:      models.Method(opts.Method),
		Symbol:      opts.Symbol,
		MarketData:  opts.MarketData,
	})
	if err != nil {
		switch {
		case errors.Is(err, parsers.ErrUnsupportedFormat):
			utils.SendJSONError(w, fmt.Sprintf("Unsupported file: %v", err), http.StatusBadRequest)
		case errors.Is(err, services.ErrParsingFailed):
			log.Warn("Upload failed while parsing the file", "filename", fileName, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error parsing file: %v", err), http.StatusBadRequest)
		case errors.Is(err, services.ErrProcessingFailed):
			log.Warn("Upload failed while processing trades", "filename", fileName, "error", err)
			utils.SendJSONError(w, fmt.Sprintf("Error processing trades in file: %v", err), http.StatusBadRequest)
		default:
			log.Error("Internal error processing upload", "filename", fileName, "error", err)
			utils.SendJSONError(w, "An internal error occurred while processing the file. Please try again later.", http.StatusInternalServerError)
		}
		return
	}

	utils.SendJSON(w, result, http.StatusOK)
}

// HandleGetSession returns a cached analysis result. It honours If-None-Match.
func (h *UploadHandler) HandleGetSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.SendJSONError(w, "authentication required or user ID not found in context", http.StatusUnauthorized)
		return
	}
	sessionID := r.PathValue("sessionID")

	result, err := h.uploadService.GetResult(sessionID, userID)
	if err != nil {
		if errors.Is(err, services.ErrSessionNotFound) {
			utils.SendJSONError(w, "Analysis session not found or expired", http.StatusNotFound)
			return
		}
		log.Error("Error retrieving analysis session", "sessionID", sessionID, "error", err)
		utils.SendJSONError(w, "Error retrieving analysis session", http.StatusInternalServerError)
		return
	}

	currentETag, etagErr := utils.GenerateETag(result)
	if etagErr != nil {
		log.Error("Failed to generate ETag for analysis session", "sessionID", sessionID, "error", etagErr)
	}

	w.Header().Set("Cache-Control", "no-cache, private")
	if etagErr == nil && currentETag != "" {
		quotedETag := fmt.Sprintf("\"%s\"", currentETag)
		w.Header().Set("ETag", quotedETag)
		for _, cETag := range strings.Split(r.Header.Get("If-None-Match"), ",") {
			if strings.TrimSpace(cETag) == quotedETag {
				log.Debug("ETag match for analysis session", "sessionID", sessionID)
				w.WriteHeader(http.StatusNotModified)
				return
			}
		}
	}

	utils.SendJSON(w, result, http.StatusOK)
}
