package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"paper-system/internal/entities"
)

type exportTable struct {
	sheet   string
	headers []interface{}
	rows    [][]interface{}
}

var paperHeaders = []interface{}{
	"ID", "Название", "Авторы", "Первый автор", "Журнал", "Раздел", "Год", "Тип", "Статус",
	"Владелец", "Департамент", "Дата создания",
}

var departmentHeaders = []interface{}{
	"Департамент", "Всего", "Одобрено", "На проверке", "Отклонено", "Журнальные", "Конференции",
	"Q1", "Q2", "Активные пользователи", "Всего пользователей",
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func paperTable(papers []entities.Paper) *exportTable {
	t := &exportTable{sheet: "Статьи", headers: paperHeaders, rows: make([][]interface{}, 0, len(papers))}
	for _, p := range papers {
		names := make([]string, 0, len(p.Authors))
		for _, a := range p.Authors {
			names = append(names, a.Name)
		}
		var year interface{} = ""
		if p.PublishYear != nil {
			year = *p.PublishYear
		}
		created := ""
		if p.CreatedAt != nil {
			created = p.CreatedAt.Format("2006-01-02 15:04")
		}
		t.rows = append(t.rows, []interface{}{
			p.ID, p.Title, strings.Join(names, "; "), p.FirstAuthor, p.JournalName, deref(p.PartitionInfo),
			year, p.Type, p.Status, deref(p.OwnerName), deref(p.DepartmentName), created,
		})
	}
	return t
}

func departmentTable(rows []entities.DepartmentStats) *exportTable {
	t := &exportTable{sheet: "Департаменты", headers: departmentHeaders, rows: make([][]interface{}, 0, len(rows))}
	for _, d := range rows {
		t.rows = append(t.rows, []interface{}{
			d.DepartmentName, d.Total, d.Approved, d.Pending, d.Rejected, d.Journal, d.Conference,
			d.Q1, d.Q2, d.ActiveUsers, d.TotalUsers,
		})
	}
	return t
}

func toStrings(values []interface{}) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}

// csv - с BOM, чтобы Excel открыл UTF-8 без вопросов.
func (t *exportTable) csv() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF")
	w := csv.NewWriter(&buf)
	if err := w.Write(toStrings(t.headers)); err != nil {
		return nil, err
	}
	for _, row := range t.rows {
		if err := w.Write(toStrings(row)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func (t *exportTable) xlsx() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", t.sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(t.sheet, "A1", &t.headers); err != nil {
		return nil, err
	}
	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(t.headers), 1)
	if err := f.SetCellStyle(t.sheet, "A1", lastHeader, style); err != nil {
		return nil, err
	}

	for i := range t.rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(t.sheet, cell, &t.rows[i]); err != nil {
			return nil, err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(t.headers))
	_ = f.SetColWidth(t.sheet, "A", lastCol, 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
