package analysis

import (
	"fmt"
	"strings"

	"elite_crm_backend/internal/chat"
)

const coachingSystemPrompt = `Você é um coach de vendas sênior de uma agência de marketing digital.
Analise a conversa de WhatsApp entre um vendedor e um cliente em potencial e responda SOMENTE com um objeto JSON válido, sem markdown, com exatamente estes campos:
{
  "sentiment": "positivo" | "neutro" | "negativo",
  "buying_stage": "Curiosidade" | "Consideração" | "Decisão" | "Compra",
  "suggested_strategy": "estratégia de abordagem em uma frase",
  "next_best_action": "próxima ação concreta para o vendedor",
  "objections": ["objeções levantadas pelo cliente"],
  "talking_points": ["argumentos que funcionaram ou podem funcionar"]
}
Baseie buying_stage apenas em sinais explícitos da conversa. Seja direto e prático.`

// buildCoachingPrompt renders the recent history as a labelled transcript,
// oldest line first.
func buildCoachingPrompt(clientName string, history []chat.Message) string {
	var b strings.Builder

	if clientName != "" {
		fmt.Fprintf(&b, "Cliente: %s\n\n", clientName)
	}
	b.WriteString("Conversa:\n")

	for _, msg := range history {
		label := "Vendedor"
		if msg.Role == chat.RoleUser {
			label = "Cliente"
		}
		fmt.Fprintf(&b, "%s: %s\n", label, msg.Content)
	}

	b.WriteString("\nAnalise a conversa acima.")
	return b.String()
}
