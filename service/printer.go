package service

import (
	"bytes"
	"html/template"
	"time"

	"github.com/BerniceZTT/prep_end/models"
)

const (
	prepDateLayout = "Jan 02, 2006"
	prepTimeLayout = "03:04 PM"
)

// GenerateLabelCopies 生成可打印标签
// 纯函数: 相同的输入总是产生相同的有序结果，条目按选择顺序，份数按序号升序
// 每个成功条目生成 labelCount 张，序号从1开始; 数量为0或失败的条目不产出
// prepDate 取渲染时刻，prepTime 缺失时回退到当前时间
func GenerateLabelCopies(labels []models.SelectedLabel, now time.Time) []models.LabelCopy {
	var copies []models.LabelCopy
	for _, label := range labels {
		if !label.Success || label.LabelCount <= 0 {
			continue
		}
		prepTime := label.PrepTime
		if prepTime == "" {
			prepTime = now.Format(prepTimeLayout)
		}
		for i := 1; i <= label.LabelCount; i++ {
			copies = append(copies, models.LabelCopy{
				ItemID:        label.ItemID,
				Name:          label.Name,
				PrepDate:      now.Format(prepDateLayout),
				PrepTime:      prepTime,
				ExpiryTime:    label.ExpiryTime,
				SequenceIndex: i,
				SequenceTotal: label.LabelCount,
			})
		}
	}
	return copies
}

// printDocumentTemplate A4打印文档模板
var printDocumentTemplate = template.Must(template.New("labels").Parse(`<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Print Labels</title>
    <style>
      @page { size: A4; margin: 12mm; }
      html, body { padding: 0; margin: 0; background: #ffffff; color: #111827; }
      * { box-sizing: border-box; }
      .grid { display: grid; grid-template-columns: repeat(1, 1fr); gap: 8mm; }
      .label-item { break-inside: avoid; page-break-inside: avoid; }
      .label-card { border: 2px solid #1f2937; border-radius: 6px; padding: 6mm; height: 100%; background: #fff; }
      .label-header { border-bottom: 2px solid #1f2937; padding-bottom: 3mm; margin-bottom: 4mm; }
      .label-header h3 { margin: 0; font: 700 14pt system-ui, sans-serif; color: #111827; }
      .label-body .row { display: grid; grid-template-columns: 1fr 1fr; gap: 4mm; margin-bottom: 4mm; }
      .hint { margin: 0 0 1mm 0; color: #6b7280; font: 600 8pt system-ui, sans-serif; }
      .value { margin: 0; color: #111827; font: 700 10pt system-ui, sans-serif; }
      .field { margin-bottom: 3mm; }
      .input { border: 1px solid #9ca3af; border-radius: 4px; height: 9mm; }
      .label-footer { border-top: 2px solid #1f2937; margin-top: 4mm; padding-top: 2mm; text-align: center; }
      .label-footer p { margin: 0; color: #6b7280; font: 400 8pt system-ui, sans-serif; }
    </style>
  </head>
  <body>
    <div class="grid">
    {{- range . }}
      <div class="label-item">
        <div class="label-card">
          <div class="label-header"><h3>{{ .Name }}</h3></div>
          <div class="label-body">
            <div class="row">
              <div class="cell">
                <p class="hint">Prep Date:</p>
                <p class="value">{{ .PrepDate }}</p>
              </div>
              <div class="cell">
                <p class="hint">Prep Time:</p>
                <p class="value">{{ .PrepTime }}</p>
              </div>
            </div>
            {{- if .ExpiryTime }}
            <div class="row"><div class="cell"><p class="hint">Expiry Time:</p><p class="value">{{ .ExpiryTime }}</p></div></div>
            {{- end }}
            <div class="field"><p class="hint">Use By Date:</p><div class="input"></div></div>
            <div class="field"><p class="hint">Prepared By:</p><div class="input"></div></div>
          </div>
          <div class="label-footer"><p>Label {{ .SequenceIndex }} of {{ .SequenceTotal }}</p></div>
        </div>
      </div>
    {{- end }}
    </div>
  </body>
</html>`))

// RenderPrintDocument 渲染A4打印文档
func RenderPrintDocument(copies []models.LabelCopy) (string, error) {
	var buf bytes.Buffer
	if err := printDocumentTemplate.Execute(&buf, copies); err != nil {
		return "", err
	}
	return buf.String(), nil
}
