package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/math-2025/www.riyaziyyat.az/internal/config"
	"github.com/math-2025/www.riyaziyyat.az/internal/models"
	"github.com/math-2025/www.riyaziyyat.az/internal/repositories"
)

// ===== STAFF AUTHENTICATION (CASDOOR) =====

// CasdoorAuthMiddleware authenticates teachers and admins using Casdoor SDK
type CasdoorAuthMiddleware struct {
	client   *casdoorsdk.Client
	userRepo repositories.UserRepository
	config   config.CasdoorConfig
}

func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, userRepo repositories.UserRepository) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Organization,
		cfg.Application,
	)

	return &CasdoorAuthMiddleware{
		client:   client,
		userRepo: userRepo,
		config:   cfg,
	}
}

// AuthMiddleware returns a Gin middleware function for Casdoor authentication
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			return
		}

		claims, err := cam.client.ParseJwtToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid token",
				Details: err.Error(),
			})
			c.Abort()
			return
		}

		user, err := cam.extractUserFromClaims(c, claims)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Failed to resolve user from token",
				Details: err.Error(),
			})
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role)

		c.Next()
	}
}

// RequireRoleMiddleware checks if the authenticated user has a required role.
// Admins pass every check.
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "User role not found in context",
			})
			c.Abort()
			return
		}

		role, ok := userRole.(models.UserRole)
		if !ok {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "Invalid user role format",
			})
			c.Abort()
			return
		}

		for _, required := range requiredRoles {
			if role == required || role == models.RoleAdmin {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: fmt.Sprintf("Insufficient permissions, required role: %v", requiredRoles),
		})
		c.Abort()
	}
}

func (cam *CasdoorAuthMiddleware) extractUserFromClaims(c *gin.Context, claims *casdoorsdk.Claims) (*models.User, error) {
	userID := claims.Id
	if userID == "" {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	// Prefer the repository so roles come from Casdoor's role assignments,
	// not just the token snapshot.
	user, err := cam.userRepo.GetByID(c.Request.Context(), userID)
	if err == nil {
		return user, nil
	}

	user = cam.createUserFromClaims(claims)
	if user == nil {
		return nil, fmt.Errorf("failed to build user from claims")
	}
	return user, nil
}

func (cam *CasdoorAuthMiddleware) createUserFromClaims(claims *casdoorsdk.Claims) *models.User {
	if claims.Id == "" {
		return nil
	}

	avatarURL := claims.User.Avatar

	role := models.RoleTeacher
	if claims.User.IsAdmin || strings.EqualFold(claims.User.Type, "admin") {
		role = models.RoleAdmin
	}

	return &models.User{
		ID:        claims.Id,
		FullName:  claims.User.DisplayName,
		Email:     claims.User.Email,
		Role:      role,
		AvatarURL: &avatarURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// GetUserIDFromContext extracts the staff user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok {
		return "", fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}

// ===== STUDENT AUTHENTICATION (LOCAL JWT) =====

// StudentClaims are the session claims issued to a student after login
type StudentClaims struct {
	StudentID uint   `json:"student_id"`
	Username  string `json:"username"`
	Group     string `json:"group"`
	jwt.RegisteredClaims
}

// StudentAuthMiddleware authenticates students with locally issued tokens
type StudentAuthMiddleware struct {
	secret     []byte
	sessionTTL time.Duration
}

func NewStudentAuthMiddleware(secret string, sessionTTL time.Duration) *StudentAuthMiddleware {
	return &StudentAuthMiddleware{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
	}
}

// IssueToken signs a session token for an authenticated student
func (sam *StudentAuthMiddleware) IssueToken(student *models.Student) (string, time.Time, error) {
	expiresAt := time.Now().Add(sam.sessionTTL)

	claims := &StudentClaims{
		StudentID: student.ID,
		Username:  student.Username,
		Group:     student.Group,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("student:%d", student.ID),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(sam.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign session token: %w", err)
	}

	return signed, expiresAt, nil
}

// AuthMiddleware validates a student session token and puts the student ID
// in the request context.
func (sam *StudentAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := bearerToken(c)
		if !ok {
			return
		}

		claims := &StudentClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return sam.secret, nil
		})
		if err != nil || !token.Valid || claims.StudentID == 0 {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Invalid or expired session",
			})
			c.Abort()
			return
		}

		c.Set("student_id", claims.StudentID)
		c.Set("student_username", claims.Username)
		c.Set("student_group", claims.Group)

		c.Next()
	}
}

// GetStudentIDFromContext extracts the student ID from Gin context
func GetStudentIDFromContext(c *gin.Context) (uint, error) {
	studentID, exists := c.Get("student_id")
	if !exists {
		return 0, fmt.Errorf("student ID not found in context")
	}

	id, ok := studentID.(uint)
	if !ok {
		return 0, fmt.Errorf("invalid student ID type in context")
	}

	return id, nil
}

// bearerToken pulls the token out of the Authorization header. On failure
// it writes a 401 and aborts; callers must return when ok is false.
func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Authorization header missing",
		})
		c.Abort()
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid authorization header format",
		})
		c.Abort()
		return "", false
	}

	return parts[1], true
}
