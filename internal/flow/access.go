package flow

import (
	"github.com/infoservices/clara/internal/i18n"
	"github.com/infoservices/clara/internal/models"
)

// restrictedTools may only be used by verified employees.
var restrictedTools = map[string]bool{
	"send_email":         true,
	"employee_directory": true,
	"company_info":       true,
}

// CheckToolAccess decides whether the current user may invoke a tool. The
// shared agent snapshot is reloaded first so a verification performed by
// another process is honored.
func (m *Manager) CheckToolAccess(tool string) (bool, string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.agent.Refresh()
	sess := m.currentLocked()
	lang := m.lang()

	if sess != nil && sess.UserType == models.UserTypeVisitor && !sess.IsVerified {
		return false, i18n.Message("visitor_limited_access", lang)
	}

	verified := m.agent.IsVerified()
	if sess != nil && sess.IsVerified {
		verified = true
	}
	if !verified {
		return false, i18n.Message("verify_first", lang)
	}

	if restrictedTools[tool] && sess != nil && sess.UserType != models.UserTypeEmployee {
		return false, i18n.Message("employee_only_tool", lang)
	}

	return true, i18n.MessageWith("tool_access_granted", lang, map[string]string{"tool": tool})
}
