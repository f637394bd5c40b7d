package notify

import (
	"fmt"

	"github.com/Texmexdex/MonitoringTexter/internal/models"
)

// BuildAlertMessage 根据站点快照生成报警标题和正文
// 正文区分低于下限和高于上限两种措辞
func BuildAlertMessage(snap models.StationSnapshot) (subject, body string) {
	subject = fmt.Sprintf("⚠️ Alert: %s Out of Range", snap.Name)

	var status string
	if snap.Value < snap.MinValue {
		status = fmt.Sprintf("BELOW minimum (%.2f < %.1f)", snap.Value, snap.MinValue)
	} else {
		status = fmt.Sprintf("ABOVE maximum (%.2f > %.1f)", snap.Value, snap.MaxValue)
	}

	body = fmt.Sprintf(`
Alert: %s

Status: %s
Current Value: %.2f
Safe Range: %.1f - %.1f
Station Phone: %s

Action Required: Contact technician to adjust readings.
`, snap.Name, status, snap.Value, snap.MinValue, snap.MaxValue, snap.PhoneNumber)

	return subject, body
}
