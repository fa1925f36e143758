package handler

import (
	"Atheneum/internal/api/config"
	"Atheneum/internal/api/dto"
	"Atheneum/internal/pkg/consts"
	"Atheneum/internal/pkg/redis"
	"Atheneum/internal/pkg/response"
	"Atheneum/internal/pkg/security"
	"Atheneum/internal/service"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userSvc service.UserService
}

func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

func (s *UserHandler) Register(c *gin.Context) {
	var registerDTO dto.RegisterDTO
	err := c.ShouldBind(&registerDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	token, err := s.userSvc.Register(c.Request.Context(), &registerDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, token)
}

func (s *UserHandler) Login(c *gin.Context) {
	var loginDTO dto.LoginDTO
	err := c.ShouldBind(&loginDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	token, err := s.userSvc.Login(c.Request.Context(), &loginDTO)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, token)
}

// Logout 把当前 token 的签名挂进吊销名单，有效期对齐 token 剩余寿命
func (s *UserHandler) Logout(c *gin.Context) {
	if !redis.Enabled() {
		response.Success(c, nil)
		return
	}

	authHeader := c.GetHeader("Authorization")
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	signature, err := security.ExtractSignature(tokenString)
	if err != nil {
		response.Error(c, service.UnauthorizedError)
		return
	}

	expire := time.Duration(config.Cfg.JWT.ExpireHours) * time.Hour
	err = redis.SetWithExpiration(c.Request.Context(), consts.TokenBlacklistPrefix+signature, "revoked", expire)
	if err != nil {
		response.Error(c, service.UnExpectedError)
		return
	}
	response.Success(c, nil)
}
