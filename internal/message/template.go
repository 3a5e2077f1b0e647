package message

import (
	"context"
	"fmt"
)

// TemplateGenerator is the last tier: static text interpolated with the
// subject's display name. It never fails, which is what guarantees the
// dispatch pipeline always has a message to send.
type TemplateGenerator struct{}

func (TemplateGenerator) Name() string { return "template" }

func (TemplateGenerator) Generate(_ context.Context, in Input) (string, error) {
	name := in.DisplayName
	if name == "" {
		name = "there"
	}
	if in.HasCritical || in.RiskScore >= 0.7 {
		return fmt.Sprintf("Hi %s, we're thinking of you. Hard days happen, and your coach is one tap away whenever you're ready to talk.", name), nil
	}
	return fmt.Sprintf("Hi %s, just checking in. A quick check-in can help you stay on track, and we're here when you need us.", name), nil
}
