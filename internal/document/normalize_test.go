package document

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ayush/science-tutor/internal/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		kind     models.DocumentKind
		in       string
		contains []string
		absent   []string
	}{
		{
			name:     "rewrites existing size",
			kind:     models.KindResearchPlan,
			in:       `<h1 style="color: blue; font-size: 40px;">A</h1><h2 style="font-size:12px">B</h2>`,
			contains: []string{`<h1 style="color: blue; font-size: 28px;">`, `<h2 style="font-size: 16px">`},
			absent:   []string{"40px", "12px"},
		},
		{
			name:     "appends to style without size",
			kind:     models.KindExperimentReport,
			in:       `<h1 style="color: green;">A</h1>`,
			contains: []string{`<h1 style="color: green; font-size: 34px; font-weight: 700;">`},
		},
		{
			name:     "adds missing style",
			kind:     models.KindExperimentReport,
			in:       `<h2 class="s">B</h2>`,
			contains: []string{`<h2 class="s" style="font-size: 18px; font-weight: 600;">`},
		},
		{
			name:     "strips fences and html marker",
			kind:     models.KindResearchPlan,
			in:       "```html\nhtml\n<div><h1>A</h1></div>\n```",
			contains: []string{`<div><h1 style="font-size: 28px; font-weight: 700;">A</h1></div>`},
			absent:   []string{"```"},
		},
		{
			name:     "renders markdown",
			kind:     models.KindResearchPlan,
			in:       "# 실험계획서\n\n## 준비물\n\n- 컵",
			contains: []string{`<h1 style="font-size: 28px; font-weight: 700;">실험계획서</h1>`, "<li>컵</li>"},
		},
		{
			name:     "rewrites single-quoted style",
			kind:     models.KindExperimentReport,
			in:       `<h1 style='font-size: 40px; color: red'>보고서</h1>`,
			contains: []string{`<h1 style="font-size: 34px; color: red">보고서</h1>`},
			absent:   []string{"40px", "style='"},
		},
		{
			name:     "rewrites unquoted style",
			kind:     models.KindResearchPlan,
			in:       `<H2 style=font-size:9px>B</H2>`,
			contains: []string{`<h2 style="font-size: 16px">B`},
			absent:   []string{"9px"},
		},
		{
			name:     "drops duplicate style attributes",
			kind:     models.KindResearchPlan,
			in:       `<h1 style="color: red" style="font-size: 50px">A</h1>`,
			contains: []string{`<h1 style="color: red; font-size: 28px; font-weight: 700;">`},
			absent:   []string{"50px"},
		},
		{
			name:     "strips uppercase fence",
			kind:     models.KindResearchPlan,
			in:       "```HTML\n<h1>x</h1>\n```",
			contains: []string{`<h1 style="font-size: 28px; font-weight: 700;">x</h1>`},
			absent:   []string{"HTML", "```"},
		},
		{
			name:     "keeps text starting with html",
			kind:     models.KindResearchPlan,
			in:       "<p>\nhtml 문서로 정리했어</p>",
			contains: []string{"html 문서로 정리했어"},
		},
		{
			name:     "copies other markup untouched",
			kind:     models.KindResearchPlan,
			in:       `<table border=1><tr><td>A &amp; B</td></tr></table>`,
			contains: []string{`<table border=1><tr><td>A &amp; B</td></tr></table>`},
		},
		{
			name:     "leaves h3 alone",
			kind:     models.KindResearchPlan,
			in:       `<h3 style="font-size: 13px;">C</h3>`,
			contains: []string{`<h3 style="font-size: 13px;">`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Normalize(tt.kind, tt.in)
			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestNormalize_EmptyStaysEmpty(t *testing.T) {
	assert.Empty(t, Normalize(models.KindResearchPlan, "```\n```"))
}
