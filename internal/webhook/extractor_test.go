package webhook

import (
	"encoding/json"
	"testing"
)

func TestExtract_StructuredPayload(t *testing.T) {
	payload := GatewayPayload{
		Event:    "messages.upsert",
		Instance: "elite-finder",
		Data: gatewayData{
			Key:      gatewayKey{RemoteJID: "5511999998888@s.whatsapp.net", ID: "MSG1"},
			PushName: "  Maria Silva  ",
			Message:  gatewayMessage{Conversation: "Quanto vou vender no próximo mês?"},
		},
	}

	msg, skip := Extract(payload)
	if skip != SkipNone {
		t.Fatalf("expected no skip, got %q", skip)
	}
	if msg.Phone != "+5511999998888" {
		t.Fatalf("expected normalized phone, got %q", msg.Phone)
	}
	if msg.Name != "Maria Silva" {
		t.Fatalf("expected trimmed name, got %q", msg.Name)
	}
	if msg.Content != "Quanto vou vender no próximo mês?" {
		t.Fatalf("unexpected content: %q", msg.Content)
	}
	if msg.Instance != "elite-finder" {
		t.Fatalf("unexpected instance: %q", msg.Instance)
	}
	if msg.IsMedia {
		t.Fatal("text message flagged as media")
	}
}

func TestExtract_FlatPayload(t *testing.T) {
	t.Run("from key over the wire", func(t *testing.T) {
		body := `{"from":"5511999998888","message":"Quanto vou vender no próximo mês?","name":"João"}`

		var payload GatewayPayload
		if err := json.Unmarshal([]byte(body), &payload); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}

		msg, skip := Extract(payload)
		if skip != SkipNone {
			t.Fatalf("expected no skip, got %q", skip)
		}
		if msg.Phone != "+5511999998888" {
			t.Fatalf("expected normalized phone, got %q", msg.Phone)
		}
		if msg.Content != "Quanto vou vender no próximo mês?" {
			t.Fatalf("unexpected content: %q", msg.Content)
		}
		if msg.Name != "João" {
			t.Fatalf("unexpected name: %q", msg.Name)
		}
	})

	t.Run("phone alias", func(t *testing.T) {
		payload := GatewayPayload{
			Phone:   "11 99999-8888",
			Message: "  Oi, quero saber mais  ",
			Name:    "João",
		}

		msg, skip := Extract(payload)
		if skip != SkipNone {
			t.Fatalf("expected no skip, got %q", skip)
		}
		if msg.Phone != "+5511999998888" {
			t.Fatalf("expected normalized phone, got %q", msg.Phone)
		}
		if msg.Content != "Oi, quero saber mais" {
			t.Fatalf("expected trimmed content, got %q", msg.Content)
		}
	})

	t.Run("from takes precedence over alias", func(t *testing.T) {
		msg, skip := Extract(GatewayPayload{
			From:    "5511999998888",
			Phone:   "5521988887777",
			Message: "oi",
		})
		if skip != SkipNone {
			t.Fatalf("expected no skip, got %q", skip)
		}
		if msg.Phone != "+5511999998888" {
			t.Fatalf("expected from field to win, got %q", msg.Phone)
		}
	})
}

func TestExtract_SkipReasons(t *testing.T) {
	cases := []struct {
		name    string
		payload GatewayPayload
		want    SkipReason
	}{
		{
			name: "other event type",
			payload: GatewayPayload{
				Event: "connection.update",
			},
			want: SkipEventType,
		},
		{
			name: "own outbound echo",
			payload: GatewayPayload{
				Event: "messages.upsert",
				Data: gatewayData{
					Key:     gatewayKey{RemoteJID: "5511999998888@s.whatsapp.net", FromMe: true},
					Message: gatewayMessage{Conversation: "resposta enviada"},
				},
			},
			want: SkipEcho,
		},
		{
			name: "group chat",
			payload: GatewayPayload{
				Event: "messages.upsert",
				Data: gatewayData{
					Key:     gatewayKey{RemoteJID: "123456789-987654@g.us"},
					Message: gatewayMessage{Conversation: "mensagem de grupo"},
				},
			},
			want: SkipGroup,
		},
		{
			name: "status broadcast",
			payload: GatewayPayload{
				Event: "messages.upsert",
				Data: gatewayData{
					Key:     gatewayKey{RemoteJID: "status@broadcast"},
					Message: gatewayMessage{Conversation: "status"},
				},
			},
			want: SkipStatus,
		},
		{
			name: "empty body",
			payload: GatewayPayload{
				Event: "messages.upsert",
				Data: gatewayData{
					Key:     gatewayKey{RemoteJID: "5511999998888@s.whatsapp.net"},
					Message: gatewayMessage{Conversation: "   "},
				},
			},
			want: SkipEmptyBody,
		},
		{
			name:    "flat payload without phone",
			payload: GatewayPayload{Message: "oi"},
			want:    SkipEmptyPhone,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, skip := Extract(tc.payload); skip != tc.want {
				t.Fatalf("expected skip %q, got %q", tc.want, skip)
			}
		})
	}
}

func TestExtract_MediaMessages(t *testing.T) {
	base := gatewayKey{RemoteJID: "5511999998888@s.whatsapp.net"}

	t.Run("image with caption keeps the caption", func(t *testing.T) {
		msg, skip := Extract(GatewayPayload{
			Event: "messages.upsert",
			Data: gatewayData{
				Key: base,
				Message: gatewayMessage{
					ImageMessage: &gatewayMediaInfo{Caption: "segue o comprovante", MimeType: "image/jpeg"},
				},
			},
		})
		if skip != SkipNone {
			t.Fatalf("expected no skip, got %q", skip)
		}
		if msg.Content != "segue o comprovante" {
			t.Fatalf("expected caption, got %q", msg.Content)
		}
		if !msg.IsMedia {
			t.Fatal("expected media flag")
		}
	})

	t.Run("audio without caption gets the placeholder", func(t *testing.T) {
		msg, skip := Extract(GatewayPayload{
			Event: "messages.upsert",
			Data: gatewayData{
				Key: base,
				Message: gatewayMessage{
					AudioMessage: &gatewayMediaInfo{MimeType: "audio/ogg"},
				},
			},
		})
		if skip != SkipNone {
			t.Fatalf("expected no skip, got %q", skip)
		}
		if msg.Content != "[Mídia Recebida]" {
			t.Fatalf("expected placeholder, got %q", msg.Content)
		}
		if !msg.IsMedia {
			t.Fatal("expected media flag")
		}
	})

	t.Run("extended text is not media", func(t *testing.T) {
		msg, skip := Extract(GatewayPayload{
			Event: "messages.upsert",
			Data: gatewayData{
				Key: base,
				Message: gatewayMessage{
					ExtendedTextMessage: &extendedText{Text: "mensagem com link"},
				},
			},
		})
		if skip != SkipNone {
			t.Fatalf("expected no skip, got %q", skip)
		}
		if msg.Content != "mensagem com link" || msg.IsMedia {
			t.Fatalf("unexpected result: %+v", msg)
		}
	})
}
