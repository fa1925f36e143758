package dto

// RegisterDTO 注册请求
type RegisterDTO struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	// Privkey 可选：提交则托管签名用私钥（hex），服务端静态加密存储
	Privkey string `json:"privkey" binding:"omitempty,len=64,hexadecimal"`
	// Pubkey 未托管私钥时必须显式给出
	Pubkey string `json:"pubkey" binding:"omitempty,len=64,hexadecimal"`
}

// LoginDTO 登录请求
type LoginDTO struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenDTO 登录返回
type TokenDTO struct {
	Token  string `json:"token"`
	UserID string `json:"userId"`
	Pubkey string `json:"pubkey"`
}
