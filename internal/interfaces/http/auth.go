package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"tally/internal/domain/user"
	"tally/internal/shared/auth"
)

type AuthHandler struct {
	userRepo user.Repository
	jwt      *auth.JWT
}

func NewAuthHandler(userRepo user.Repository, jwt *auth.JWT) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, jwt: jwt}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// HandleRegister creates a new account and signs the user in.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := user.RegisterParams{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	}
	if errs := params.Validate(); errs.HasErrors() {
		respondFieldErrors(w, errs)
		return
	}

	ctx := r.Context()

	existing, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		log.Printf("Error checking existing user %s: %v", req.Email, err)
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "A user with this email already exists")
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password during registration: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	userModel, err := h.userRepo.Create(ctx, user.CreateUserParams{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: passwordHash,
	})
	if err != nil {
		// A concurrent registration can win between the existence check
		// and the insert; the unique index reports it here.
		if errors.Is(err, user.ErrDuplicateEmail) {
			respondError(w, http.StatusConflict, "A user with this email already exists")
			return
		}
		log.Printf("Error creating user %s: %v", req.Email, err)
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := h.jwt.Generate(userModel.ID, userModel.Email, userModel.Name)
	if err != nil {
		log.Printf("Error generating token for new user %d: %v", userModel.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	setAuthCookie(w, r, token)
	respondData(w, http.StatusCreated, AuthResponse{Token: token, User: userModel})
}

// HandleLogin authenticates a user with email and password.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	params := user.LoginParams{Email: req.Email, Password: req.Password}
	if errs := params.Validate(); errs.HasErrors() {
		respondFieldErrors(w, errs)
		return
	}

	ctx := r.Context()

	userModel, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		log.Printf("Error looking up user %s: %v", req.Email, err)
		respondError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}
	if userModel == nil {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	if err := auth.VerifyPassword(userModel.PasswordHash, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := h.jwt.Generate(userModel.ID, userModel.Email, userModel.Name)
	if err != nil {
		log.Printf("Error generating token for user %d: %v", userModel.ID, err)
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	setAuthCookie(w, r, token)
	respondData(w, http.StatusOK, AuthResponse{Token: token, User: userModel})
}

// HandleLogout clears the auth cookie.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	secure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the authenticated user's profile.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	userID, ok := userIDFrom(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	userModel, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		log.Printf("Error getting user %d: %v", userID, err)
		respondError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}
	if userModel == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, userModel)
}

// setAuthCookie stores the session token as an HttpOnly cookie. The Secure
// flag is only set when the request actually arrived over HTTPS.
func setAuthCookie(w http.ResponseWriter, r *http.Request, token string) {
	secure := r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https"

	http.SetCookie(w, &http.Cookie{
		Name:     "access_token",
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(auth.TokenTTL.Seconds()),
	})
}
