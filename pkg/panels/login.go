package panels

import (
	"context"

	"github.com/campushire/portal/pkg/rbac"
)

// LoginPanel is the unauthenticated view. It holds no data and opens no
// subscriptions.
type LoginPanel struct{}

func (p *LoginPanel) Kind() rbac.PanelKind { return rbac.PanelLogin }

func (p *LoginPanel) Mount(ctx context.Context) error { return nil }

func (p *LoginPanel) Snapshot(ctx context.Context) (map[string]interface{}, error) {
	return map[string]interface{}{"authenticated": false}, nil
}

func (p *LoginPanel) Unmount() {}
