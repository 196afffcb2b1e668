package bot

import (
	"bytes"
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Spok95/stockbook/internal/domain/movements"
	"github.com/Spok95/stockbook/internal/infra/metrics"
)

// sendLedgerReport собирает Excel с остатками и полным журналом и шлёт
// файлом в чат.
func (b *Bot) sendLedgerReport(ctx context.Context, chatID int64) {
	prods, err := b.products.List(ctx)
	if err != nil {
		b.reply(chatID, "Ошибка загрузки товаров")
		return
	}
	moves, err := b.ledger.Movements(ctx)
	if err != nil {
		b.reply(chatID, "Ошибка загрузки журнала")
		return
	}
	if len(prods) == 0 && len(moves) == 0 {
		b.reply(chatID, "Данных пока нет — отчёт пуст")
		return
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// лист «Товары»
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(sheet, "Товары"); err == nil {
		sheet = "Товары"
	}

	header := []interface{}{
		"Название", "Категория", "Остаток", "Цена", "Себестоимость", "Стоимость остатка", "Заметки",
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		b.reply(chatID, "Ошибка формирования файла (заголовок)")
		return
	}
	row := 2
	for _, p := range prods {
		value := p.AverageCost.Mul(decimal.NewFromInt(p.Quantity))
		excelRow := []interface{}{
			p.Name,
			p.Category,
			p.Quantity,
			p.Price.StringFixed(2),
			p.AverageCost.StringFixed(2),
			value.StringFixed(2),
			p.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			b.reply(chatID, "Ошибка формирования файла (ячейки)")
			return
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			b.reply(chatID, "Ошибка формирования файла (строки)")
			return
		}
		row++
	}

	// лист «Журнал»
	const journal = "Журнал"
	if _, err := f.NewSheet(journal); err != nil {
		b.reply(chatID, "Ошибка формирования файла (лист журнала)")
		return
	}
	mheader := []interface{}{
		"Дата", "Тип", "Товар", "Категория", "Количество", "Цена", "Себестоимость", "Сумма", "Средняя на момент", "Заметки",
	}
	if err := f.SetSheetRow(journal, "A1", &mheader); err != nil {
		b.reply(chatID, "Ошибка формирования файла (заголовок журнала)")
		return
	}
	row = 2
	for _, m := range moves {
		excelRow := []interface{}{
			m.CreatedAt.Format("02.01.2006 15:04"),
			movementLabel(m.Type),
			m.ProductSnapshot.Name,
			m.ProductSnapshot.Category,
			m.Quantity,
			optMoney(m.UnitPrice),
			optMoney(m.UnitCost),
			m.TotalAmount.StringFixed(2),
			m.AverageCostAtTime.StringFixed(2),
			m.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			b.reply(chatID, "Ошибка формирования файла (ячейки журнала)")
			return
		}
		if err := f.SetSheetRow(journal, cell, &excelRow); err != nil {
			b.reply(chatID, "Ошибка формирования файла (строки журнала)")
			return
		}
		row++
	}

	// лист «Сводка»
	if sum, err := b.analytics.Summary(ctx); err == nil {
		const totals = "Сводка"
		if _, err := f.NewSheet(totals); err == nil {
			rows := [][]interface{}{
				{"Выручка", sum.TotalRevenue.StringFixed(2)},
				{"Себестоимость проданного", sum.SoldProductsCost.StringFixed(2)},
				{"Прибыль с продаж", sum.SalesProfit.StringFixed(2)},
				{"Маржа, %", sum.ProfitMargin.String()},
				{"Стоимость остатков", sum.InventoryValue.StringFixed(2)},
				{"Затраты всего", sum.TotalCosts.StringFixed(2)},
				{"Прибыль за вычетом остатков", sum.NetProfit.StringFixed(2)},
				{"Выпусков продукции", sum.TotalProductions},
			}
			for i := range rows {
				cell, err := excelize.CoordinatesToCellName(1, i+1)
				if err != nil {
					break
				}
				_ = f.SetSheetRow(totals, cell, &rows[i])
			}
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		b.reply(chatID, "Ошибка записи файла")
		return
	}

	fileName := fmt.Sprintf("stockbook_report_%s.xlsx", time.Now().Format("20060102_150405"))
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fileName,
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("Отчёт: %d товаров, %d записей журнала.", len(prods), len(moves))
	b.send(doc)

	metrics.ReportExportsTotal.Inc()
	b.log.Info("report exported", "products", len(prods), "movements", len(moves))
}

func movementLabel(t movements.Type) string {
	switch t {
	case movements.TypeSale:
		return "продажа"
	case movements.TypeProduction:
		return "выпуск"
	case movements.TypeAdjustment:
		return "корректировка"
	}
	return string(t)
}

func optMoney(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.StringFixed(2)
}
