package platform

import (
	"Postline/internal/api/config"

	"github.com/pkg/errors"
)

// ErrUnknownProvider 请求了注册表之外的平台标识
var ErrUnknownProvider = errors.New("unknown provider")

// Registry 已知社交平台的封闭注册表
// 注册表在启动时构建完成，之后只读
type Registry struct {
	clients map[string]Client
}

func NewRegistry(cfg config.PlatformsConfig) *Registry {
	clients := map[string]Client{
		ProviderTwitter:   newTwitterClient(cfg.Twitter),
		ProviderFacebook:  newFacebookClient(cfg.Facebook),
		ProviderInstagram: newInstagramClient(cfg.Instagram),
		ProviderLinkedIn:  newLinkedInClient(cfg.LinkedIn),
		ProviderYouTube:   newYouTubeClient(cfg.YouTube),
	}
	return &Registry{clients: clients}
}

// NewRegistryWithClients 测试用，注入自定义 Client
func NewRegistryWithClients(clients map[string]Client) *Registry {
	return &Registry{clients: clients}
}

// Get 按标识查找平台客户端
func (s *Registry) Get(identifier string) (Client, error) {
	client, ok := s.clients[identifier]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownProvider, "provider %q", identifier)
	}
	return client, nil
}

// Identifiers 返回全部已注册的平台标识
func (s *Registry) Identifiers() []string {
	ids := make([]string, 0, len(s.clients))
	for id := range s.clients {
		ids = append(ids, id)
	}
	return ids
}
