/*
 * @module service/report/tsv_writer
 * @description TSV报告输出,按项目逐行汇总缺失数据集、样本数不一致数据集与缺失数据类型
 * @architecture 分层架构 - 序列化输出层
 * @documentReference dev_docs/recon_requirements.md
 * @stateFlow 项目结果 -> 行渲染 -> 可选GBK编码转换 -> 文件写出
 * @rules 列顺序与表头固定;列表列以";"连接;RECON_TSV_ENCODING=gbk时输出GBK编码(Excel兼容)
 * @dependencies encoding/csv, golang.org/x/text
 * @refs service/recon/types.go, main.go
 */

package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"

	"recon-service/service/recon"
)

// tsvHeader 报告列头,顺序固定
var tsvHeader = []string{
	"project_id",
	"#_missing_datasets",
	"missing_datasets",
	"#_datasets_with_wrong_sampleN",
	"datasets_with_wrong_sampleN",
	"#_missing_datatypes",
	"missing_datatypes",
}

// Row TSV报告的一行,对应一个项目
type Row struct {
	ProjectID          string
	MissingDatasets    []string
	WrongCountDatasets []string
	MissingDatatypes   []string
}

// RowsFromResults 将引擎结果转换为报告行,跳过对账中止的项目
func RowsFromResults(results []recon.ProjectResult) []Row {
	rows := make([]Row, 0, len(results))
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		rows = append(rows, Row{
			ProjectID:          r.ProjectID,
			MissingDatasets:    r.MissingDatasets,
			WrongCountDatasets: r.WrongCountDatasets,
			MissingDatatypes:   r.MissingDatatypes,
		})
	}
	return rows
}

// RenderTSV 渲染TSV内容
// encoding为"gbk"时转换为GBK编码,其余值输出UTF-8
func RenderTSV(rows []Row, encoding string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'

	if err := w.Write(tsvHeader); err != nil {
		return nil, fmt.Errorf("写入表头失败: %w", err)
	}
	for _, row := range rows {
		record := []string{
			row.ProjectID,
			strconv.Itoa(len(row.MissingDatasets)),
			strings.Join(row.MissingDatasets, ";"),
			strconv.Itoa(len(row.WrongCountDatasets)),
			strings.Join(row.WrongCountDatasets, ";"),
			strconv.Itoa(len(row.MissingDatatypes)),
			strings.Join(row.MissingDatatypes, ";"),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("写入报告行失败: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("渲染TSV失败: %w", err)
	}

	data := buf.Bytes()
	if strings.EqualFold(encoding, "gbk") || strings.EqualFold(encoding, "gb2312") {
		encoder := simplifiedchinese.GBK.NewEncoder()
		converted, _, err := transform.Bytes(encoder, data)
		if err != nil {
			return nil, fmt.Errorf("GBK编码转换失败: %w", err)
		}
		data = converted
	}
	return data, nil
}

// WriteTSV 渲染并写出TSV报告文件
func WriteTSV(path string, rows []Row, encoding string) error {
	data, err := RenderTSV(rows, encoding)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写出报告文件失败: %w", err)
	}
	return nil
}
