package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"StockArchive/internal/model"
)

// FormatRunSummary formats a pipeline run into a Telegram message.
func FormatRunSummary(report *model.RunReport) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📦 <b>StockArchive</b> | %s UTC\n\n", report.FinishedAt.UTC().Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("来源: %s | 耗时: %s\n", report.Provider, report.FinishedAt.Sub(report.StartedAt).Round(time.Second)))
	b.WriteString(fmt.Sprintf("✅ 成功: %d  ⚠️ 无数据: %d  ❌ 失败: %d\n",
		report.Count(model.StatusSucceeded), report.Count(model.StatusEmpty), report.Count(model.StatusFailed)))

	if empty := report.Symbols(model.StatusEmpty); len(empty) > 0 {
		b.WriteString("\n⚠️ <b>无数据:</b> " + html.EscapeString(strings.Join(empty, ", ")) + "\n")
	}

	var failed []model.SymbolResult
	for _, res := range report.Results {
		if res.Status == model.StatusFailed {
			failed = append(failed, res)
		}
	}
	if len(failed) > 0 {
		b.WriteString("\n❌ <b>失败:</b>\n")
		for _, res := range failed {
			b.WriteString(fmt.Sprintf("  %s: %s\n", html.EscapeString(res.Symbol), html.EscapeString(errText(res.Err))))
		}
	}
	return b.String()
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
