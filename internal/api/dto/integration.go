package dto

// ConnectIntegrationDTO OAuth 回调后由前端提交的授权结果
type ConnectIntegrationDTO struct {
	Provider     string `json:"provider" binding:"required"`
	AccountID    string `json:"account_id" binding:"required"`
	AccountName  string `json:"account_name"`
	Picture      string `json:"picture"`
	AccessToken  string `json:"access_token" binding:"required"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Type         string `json:"type" binding:"omitempty,oneof=social storage"`
}

type IntegrationDTO struct {
	ID             uint64 `json:"id"`
	Provider       string `json:"provider"`
	AccountID      string `json:"account_id"`
	AccountName    string `json:"account_name"`
	Picture        string `json:"picture"`
	Type           string `json:"type"`
	RefreshNeeded  bool   `json:"refresh_needed"`
	Disabled       bool   `json:"disabled"`
	TokenExpiresAt string `json:"token_expires_at,omitempty"`
	CreatedAt      string `json:"created_at"`
}
