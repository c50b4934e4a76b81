package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/dto"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/middleware"
	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
	appErrors "github.com/Chaisiri-65311187/Student-Compatency-System-sub000/pkg/errors"
)

var queryValidator = validator.New()

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

func requestMeta(c *gin.Context) models.RequestMeta {
	meta := models.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
	if claims := claimsFromContext(c); claims != nil {
		meta.ActorID = claims.UserID
	}
	return meta
}

// readSubject picks the account a read is about. Students always read
// themselves; teachers and admins may name another account via ?accountId.
func readSubject(c *gin.Context, param string) (string, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return "", appErrors.ErrUnauthorized
	}
	target := strings.TrimSpace(c.Query(param))
	if target == "" || target == claims.UserID {
		return claims.UserID, nil
	}
	if claims.Role == models.RoleAdmin || claims.Role == models.RoleTeacher {
		return target, nil
	}
	return "", appErrors.Clone(appErrors.ErrForbidden, "students can only access their own records")
}

// writeSubject picks the account a write targets. Only admins may write for
// someone else.
func writeSubject(c *gin.Context) (string, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return "", appErrors.ErrUnauthorized
	}
	target := strings.TrimSpace(c.Query("accountId"))
	if target == "" || target == claims.UserID {
		return claims.UserID, nil
	}
	if claims.Role == models.RoleAdmin {
		return target, nil
	}
	return "", appErrors.Clone(appErrors.ErrForbidden, "cannot write records for another account")
}

// ownerScope is the owner check passed to services; admins bypass it.
func ownerScope(claims *models.JWTClaims) string {
	if claims == nil || claims.Role == models.RoleAdmin {
		return ""
	}
	return claims.UserID
}

// canReadAccount reports whether the caller may see data about accountID.
func canReadAccount(claims *models.JWTClaims, accountID string) bool {
	if claims == nil {
		return false
	}
	return claims.Role == models.RoleAdmin || claims.Role == models.RoleTeacher || claims.UserID == accountID
}

func bindPeriod(c *gin.Context) (models.Period, error) {
	var q dto.PeriodQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return models.Period{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "year and sem must be numbers")
	}
	if err := queryValidator.Struct(q); err != nil {
		return models.Period{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "year and sem are required")
	}
	return models.Period{YearLevel: q.YearLevel, Semester: q.Semester}, nil
}

func bindCohort(c *gin.Context) (models.CohortFilter, error) {
	var q dto.CohortQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return models.CohortFilter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "year and sem must be numbers")
	}
	if err := queryValidator.Struct(q); err != nil {
		return models.CohortFilter{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "major, year and sem are required")
	}
	return models.CohortFilter{Major: strings.TrimSpace(q.Major), YearLevel: q.YearLevel, Semester: q.Semester}, nil
}

// optionalInt parses an optional integer query parameter.
func optionalInt(c *gin.Context, key string) (*int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, key+" must be a number")
	}
	return &v, nil
}

func optionalFloat(c *gin.Context, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, appErrors.Clone(appErrors.ErrValidation, key+" must be a number")
	}
	return &v, nil
}

func invalidBody(err error) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid request body")
}
