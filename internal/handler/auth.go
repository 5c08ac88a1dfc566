package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/datavault/internal/apperror"
	"github.com/sakif/datavault/internal/service"
)

// maxBodyBytes caps JSON request bodies. The largest legitimate payload
// here is a registration form; 1 MiB is generous.
const maxBodyBytes = 1 << 20

// AuthHandler serves registration and token issuance.
type AuthHandler struct {
	auth     *service.AuthService
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(auth *service.AuthService, validate *validator.Validate, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		validate: validate,
		logger:   logger,
	}
}

// registerRequest is the POST /api/register body.
//
// The validator tags cover the schema-level constraints (presence, length
// bounds, email syntax) that all collapse into INVALID_REQUEST. The
// business-rule failures with their own codes (uniqueness, password
// policy, age sign, gender) are the service's, so their ordering against
// each other stays in one place.
type registerRequest struct {
	Username string `json:"username"  validate:"required,min=5,max=50"`
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required"`
	FullName string `json:"full_name" validate:"required"`
	Age      int    `json:"age"`
	Gender   string `json:"gender"`
}

// HandleRegister creates a new user account.
//
// HTTP: POST /api/register (no auth)
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("register: malformed JSON", slog.String("error", err.Error()))
		writeError(w, h.logger, apperror.Validation(apperror.CodeInvalidRequest,
			"Invalid request. Please provide all required fields: username, email, password, full_name."))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, h.logger, apperror.Validation(apperror.CodeInvalidRequest,
			"Invalid request. Please provide all required fields: username, email, password, full_name."))
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterParams{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Age:      req.Age,
		Gender:   req.Gender,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	// The user model's json tags expose user_id and the profile fields;
	// the password hash is tagged out.
	writeSuccess(w, "User successfully registered!", user)
}

// tokenData is the payload of a successful POST /api/token.
type tokenData struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// HandleToken issues a bearer token for valid basic credentials.
//
// HTTP: POST /api/token (Authorization: Basic)
//
// A missing or empty Basic header is MISSING_FIELDS (400); bad credentials
// are INVALID_CREDENTIALS (401) with no unknown-user/wrong-password
// distinction.
func (h *AuthHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	username, password, ok := r.BasicAuth()
	if !ok || username == "" || password == "" {
		writeError(w, h.logger, apperror.Validation(apperror.CodeMissingFields,
			"Missing fields. Please provide both username and password."))
		return
	}

	result, err := h.auth.IssueToken(r.Context(), username, password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	writeSuccess(w, "Access token generated successfully.", tokenData{
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
	})
}
