package oracle

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/julianstephens/daylog/internal/constants"
	"github.com/julianstephens/daylog/internal/logger"
)

const (
	classifySystemPrompt = "You are a helpful assistant that classifies activities into categories."
	emojiSystemPrompt    = "You are a helpful assistant that picks one emoji to represent a habit."

	maxEmojiRunes = 8
)

// Classifier maps free-text activity descriptions onto a user's habits.
type Classifier struct {
	completer Completer
}

func NewClassifier(c Completer) *Classifier {
	if c == nil {
		c = Disabled{}
	}
	return &Classifier{completer: c}
}

func classifyPrompt(description string, candidates []string) string {
	return fmt.Sprintf(
		"Classify the following activity into one of these categories: %s. Only respond with the category name. Activity: %s",
		strings.Join(candidates, ", "), description)
}

// Match asks the oracle which candidate fits description. The returned label is
// always one of candidates, spelled as the caller spelled it.
func (c *Classifier) Match(ctx context.Context, description string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	reply, err := c.completer.Complete(ctx, classifySystemPrompt, classifyPrompt(description, candidates))
	if err != nil {
		logger.Warn("Activity classification failed", "error", err)
		return "", false
	}

	label, ok := matchCandidate(reply, candidates)
	if !ok {
		logger.Warn("Classification reply matched no habit", "reply", reply)
	}
	return label, ok
}

// Classify is Match with the fixed fallback label. It never fails.
func (c *Classifier) Classify(ctx context.Context, description string, candidates []string) string {
	if label, ok := c.Match(ctx, description, candidates); ok {
		return label
	}
	return constants.FallbackLabel
}

// Emoji suggests a single emoji for a habit name, or the default emoji.
func (c *Classifier) Emoji(ctx context.Context, habitName string) string {
	reply, err := c.completer.Complete(ctx, emojiSystemPrompt,
		fmt.Sprintf("Reply with exactly one emoji and nothing else for the habit: %s", habitName))
	if err != nil {
		logger.Warn("Emoji suggestion failed", "habit", habitName, "error", err)
		return constants.DefaultEmoji
	}
	emoji := strings.Trim(strings.TrimSpace(reply), "\"'`")
	if !isEmoji(emoji) {
		logger.Warn("Emoji suggestion rejected", "habit", habitName, "reply", reply)
		return constants.DefaultEmoji
	}
	return emoji
}

func isEmoji(s string) bool {
	if s == "" || utf8.RuneCountInString(s) > maxEmojiRunes {
		return false
	}
	symbol := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return false
		}
		if unicode.Is(unicode.So, r) {
			symbol = true
		}
	}
	return symbol
}

// normalizeReply strips the decoration models tend to add around a bare label,
// such as quotes, trailing periods and a "Category:" prefix.
func normalizeReply(reply string) string {
	s := strings.TrimSpace(reply)
	if i := strings.Index(s, ":"); i >= 0 && strings.TrimSpace(s[i+1:]) != "" {
		s = s[i+1:]
	}
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}

func words(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}

func matchCandidate(reply string, candidates []string) (string, bool) {
	norm := normalizeReply(reply)
	for _, cand := range candidates {
		if strings.EqualFold(norm, strings.TrimSpace(cand)) {
			return cand, true
		}
	}

	// A longer reply still counts when it names exactly one candidate as a whole word.
	haystack := " " + words(reply) + " "
	var found []string
	for _, cand := range candidates {
		w := words(cand)
		if w == "" {
			continue
		}
		if strings.Contains(haystack, " "+w+" ") {
			found = append(found, cand)
		}
	}
	if len(found) == 1 {
		return found[0], true
	}
	return "", false
}
