package service

import (
	"fmt"
	"strings"

	"persona-movie-recommender/internal/models"
)

// NoHistoryMarker is the literal the prompt carries when the user has
// not rated any movie yet.
const NoHistoryMarker = "Nenhum filme assistido ainda."

const historyTitleCap = 5

// HistorySummary is the liked/disliked split of a user's watch
// history, capped for prompt size.
type HistorySummary struct {
	Liked    []string
	Disliked []string
}

// Empty reports whether the user has no usable history.
func (h HistorySummary) Empty() bool {
	return len(h.Liked) == 0 && len(h.Disliked) == 0
}

// AllTitles returns every title in the summary, liked and disliked.
func (h HistorySummary) AllTitles() []string {
	all := make([]string, 0, len(h.Liked)+len(h.Disliked))
	all = append(all, h.Liked...)
	return append(all, h.Disliked...)
}

// SummarizeHistory splits watched movies into liked (rating at or
// above the scale midpoint) and disliked, keeping at most five of
// each. The input is expected newest-first; the caps keep the most
// recent titles.
func SummarizeHistory(watched []models.WatchedMovie) HistorySummary {
	var h HistorySummary
	for _, w := range watched {
		if w.Liked() {
			if len(h.Liked) < historyTitleCap {
				h.Liked = append(h.Liked, w.Title)
			}
		} else if len(h.Disliked) < historyTitleCap {
			h.Disliked = append(h.Disliked, w.Title)
		}
	}
	return h
}

// BuildPrompt assembles the generation prompt from the persona and the
// watch-history summary. Pure function of its inputs.
func BuildPrompt(p models.Persona, history HistorySummary) string {
	var b strings.Builder

	b.WriteString("Você é um assistente especialista em cinema.\n")
	b.WriteString("Um usuário com as seguintes características pediu recomendações de filmes:\n\n")
	fmt.Fprintf(&b, "- Nome: %s\n", p.Name)
	fmt.Fprintf(&b, "- Gêneros preferidos: %s\n", p.FavoriteGenres)
	fmt.Fprintf(&b, "- Humor atual: %s\n", p.Mood)
	fmt.Fprintf(&b, "- Tempo disponível: %s\n", p.AvailableTime)
	fmt.Fprintf(&b, "- Época preferida: %s\n", p.PreferredEra)

	b.WriteString("\nHistórico de filmes assistidos:\n")
	if history.Empty() {
		b.WriteString(NoHistoryMarker + "\n")
	} else {
		if len(history.Liked) > 0 {
			fmt.Fprintf(&b, "- Gostou de: %s\n", strings.Join(history.Liked, ", "))
		}
		if len(history.Disliked) > 0 {
			fmt.Fprintf(&b, "- Não gostou de: %s\n", strings.Join(history.Disliked, ", "))
		}
		b.WriteString("Não recomende nenhum filme já assistido. ")
		b.WriteString("Priorize filmes parecidos com os que o usuário gostou e evite os parecidos com os que não gostou.\n")
	}

	b.WriteString("\nGere uma lista com exatamente 5 filmes recomendados, cada um com:\n")
	b.WriteString("- Título\n")
	b.WriteString("- Gênero principal\n")
	b.WriteString("- Duração aproximada\n")
	b.WriteString("- Ano de lançamento\n")
	b.WriteString("- Uma frase explicando por que é uma boa escolha para essa persona\n")
	b.WriteString("\nResponda em formato HTML limpo, com o título de cada filme em <h2>, sem Markdown.\n")

	return b.String()
}
