package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "line one line two", truncate("line one\nline two", 40))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Empty(t, truncate("anything", 0))
}

func TestTruncate_WideRunes(t *testing.T) {
	got := truncate("日本語のプロンプトです", 10)

	assert.LessOrEqual(t, runewidth.StringWidth(got), 10)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestTerminalWidth_NonTerminal(t *testing.T) {
	assert.Equal(t, defaultWidth, terminalWidth(&bytes.Buffer{}))
	assert.Nil(t, terminalFile(&bytes.Buffer{}))
}

func TestResultBlock(t *testing.T) {
	block := resultBlock("Write a haiku", "Leaves fall\nquietly", 40)
	lines := strings.Split(block, "\n")

	assert.Len(t, lines, 6)
	assert.Contains(t, lines[0], strings.Repeat("=", 40))
	assert.Contains(t, lines[1], "PROMPT:")
	assert.Contains(t, lines[1], "Write a haiku")
	assert.NotContains(t, lines[1], "...")
	assert.Contains(t, lines[3], "Leaves fall")
	assert.Contains(t, lines[5], strings.Repeat("=", 40))
}

func TestResultBlock_PromptFitsLabelWidth(t *testing.T) {
	block := resultBlock("Write a haiku", "reply", 20)
	header := strings.Split(block, "\n")[1]

	assert.Contains(t, header, "PROMPT: Write a h...")
	assert.Equal(t, 20, runewidth.StringWidth(header))
}

func TestResultBlock_LongPromptIsTruncated(t *testing.T) {
	block := resultBlock(strings.Repeat("x", 200), "reply", 30)
	header := strings.Split(block, "\n")[1]

	assert.LessOrEqual(t, runewidth.StringWidth(header), 30+len("\x1b[0m")*4)
	assert.Contains(t, header, "...")
}

func TestRenderMarkdown_KeepsText(t *testing.T) {
	out := renderMarkdown("# Title\n\nSome **bold** text.", 60)

	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "bold")
}

func TestBanner(t *testing.T) {
	b := banner()

	assert.Contains(t, b, "AI CONTENT WIZARD")
	assert.Contains(t, b, "Groq-Powered Content Generation Tool")
}
