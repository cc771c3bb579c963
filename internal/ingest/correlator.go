package ingest

import "regexp"

// Ответы поставщиков сопоставляются с RFP по тегу в теме письма,
// который ставит рассылка приглашений: "RFP Invitation: ... [RFP-<uuid>]".
var rfpTagPattern = regexp.MustCompile(`(?i)\[RFP-([a-f0-9-]+)\]`)

// ExtractRFPID достаёт идентификатор RFP из темы письма.
// Возвращает false, если тег отсутствует.
func ExtractRFPID(subject string) (string, bool) {
	match := rfpTagPattern.FindStringSubmatch(subject)
	if match == nil {
		return "", false
	}
	return match[1], true
}
