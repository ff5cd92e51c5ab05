package webhook

import (
	"strings"

	"elite_crm_backend/platform/phone"
)

// mediaPlaceholder substitutes message content the pipeline cannot analyse.
const mediaPlaceholder = "[Mídia Recebida]"

// GatewayPayload mirrors the EvolutionAPI v2 webhook envelope. Flat
// top-level fields cover simpler gateways that post phone/message directly.
type GatewayPayload struct {
	Event    string      `json:"event"`
	Instance string      `json:"instance"`
	Data     gatewayData `json:"data"`

	// Flat fallback format. Simple gateways post "from"; "phone" is
	// accepted as an alias.
	From    string `json:"from"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Name    string `json:"name"`
}

type gatewayData struct {
	Key      gatewayKey     `json:"key"`
	PushName string         `json:"pushName"`
	Message  gatewayMessage `json:"message"`
}

type gatewayKey struct {
	RemoteJID string `json:"remoteJid"`
	FromMe    bool   `json:"fromMe"`
	ID        string `json:"id"`
}

type gatewayMessage struct {
	Conversation        string            `json:"conversation"`
	ExtendedTextMessage *extendedText     `json:"extendedTextMessage"`
	ImageMessage        *gatewayMediaInfo `json:"imageMessage"`
	AudioMessage        *gatewayMediaInfo `json:"audioMessage"`
	VideoMessage        *gatewayMediaInfo `json:"videoMessage"`
	DocumentMessage     *gatewayMediaInfo `json:"documentMessage"`
}

type extendedText struct {
	Text string `json:"text"`
}

type gatewayMediaInfo struct {
	Caption  string `json:"caption"`
	MimeType string `json:"mimetype"`
}

// InboundMessage is the normalized result of extraction.
type InboundMessage struct {
	Instance string
	Phone    string
	Name     string
	Content  string
	IsMedia  bool
}

// SkipReason explains why a payload produced no inbound message.
type SkipReason string

const (
	SkipNone       SkipReason = ""
	SkipEcho       SkipReason = "echo"
	SkipGroup      SkipReason = "group"
	SkipStatus     SkipReason = "status_broadcast"
	SkipEventType  SkipReason = "event_type"
	SkipEmptyPhone SkipReason = "empty_phone"
	SkipEmptyBody  SkipReason = "empty_body"
)

// Extract normalizes a gateway payload into an InboundMessage, or reports
// why the payload should be ignored. Messages the account itself sent,
// group chats, and status broadcasts never enter the pipeline.
func Extract(p GatewayPayload) (InboundMessage, SkipReason) {
	if p.Event != "" && p.Event != "messages.upsert" {
		return InboundMessage{}, SkipEventType
	}

	// Flat format has no envelope metadata to filter on.
	if p.Event == "" && p.Data.Key.RemoteJID == "" {
		return extractFlat(p)
	}

	key := p.Data.Key
	if key.FromMe {
		return InboundMessage{}, SkipEcho
	}
	if strings.HasSuffix(key.RemoteJID, "@g.us") {
		return InboundMessage{}, SkipGroup
	}
	if strings.HasPrefix(key.RemoteJID, "status@") {
		return InboundMessage{}, SkipStatus
	}

	number := phone.NormalizeE164(jidNumber(key.RemoteJID))
	if number == "" {
		return InboundMessage{}, SkipEmptyPhone
	}

	content, isMedia := messageText(p.Data.Message)
	if content == "" {
		return InboundMessage{}, SkipEmptyBody
	}

	return InboundMessage{
		Instance: p.Instance,
		Phone:    number,
		Name:     strings.TrimSpace(p.Data.PushName),
		Content:  content,
		IsMedia:  isMedia,
	}, SkipNone
}

func extractFlat(p GatewayPayload) (InboundMessage, SkipReason) {
	raw := p.From
	if raw == "" {
		raw = p.Phone
	}
	number := phone.NormalizeE164(raw)
	if number == "" {
		return InboundMessage{}, SkipEmptyPhone
	}

	content := strings.TrimSpace(p.Message)
	if content == "" {
		return InboundMessage{}, SkipEmptyBody
	}

	return InboundMessage{
		Instance: p.Instance,
		Phone:    number,
		Name:     strings.TrimSpace(p.Name),
		Content:  content,
	}, SkipNone
}

// jidNumber strips the WhatsApp JID suffix, e.g. "5511999998888@s.whatsapp.net".
func jidNumber(jid string) string {
	if idx := strings.IndexByte(jid, '@'); idx >= 0 {
		return jid[:idx]
	}
	return jid
}

func messageText(m gatewayMessage) (string, bool) {
	if text := strings.TrimSpace(m.Conversation); text != "" {
		return text, false
	}
	if m.ExtendedTextMessage != nil {
		if text := strings.TrimSpace(m.ExtendedTextMessage.Text); text != "" {
			return text, false
		}
	}

	for _, media := range []*gatewayMediaInfo{m.ImageMessage, m.VideoMessage, m.DocumentMessage} {
		if media == nil {
			continue
		}
		if caption := strings.TrimSpace(media.Caption); caption != "" {
			return caption, true
		}
		return mediaPlaceholder, true
	}
	if m.AudioMessage != nil {
		return mediaPlaceholder, true
	}

	return "", false
}
