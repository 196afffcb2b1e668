package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/Spok95/stockbook/internal/domain/products"
)

const topLimit = 10

func productList(list []products.Product) string {
	var sb strings.Builder
	for i, p := range list {
		fmt.Fprintf(&sb, "%d. %s", i+1, p.Name)
		if p.Category != "" {
			fmt.Fprintf(&sb, " [%s]", p.Category)
		}
		fmt.Fprintf(&sb, " — %d шт по %s\n", p.Quantity, money(p.Price))
	}
	return sb.String()
}

func (b *Bot) showProducts(ctx context.Context, chatID int64) {
	list, err := b.products.List(ctx)
	if err != nil {
		b.log.Error("products list failed", "err", err)
		b.reply(chatID, "Ошибка загрузки товаров")
		return
	}
	if len(list) == 0 {
		b.reply(chatID, "Товаров пока нет. Завести — /new")
		return
	}
	b.reply(chatID, "📦 Товары:\n\n"+productList(list))
}

func (b *Bot) showSummary(ctx context.Context, chatID int64) {
	s, err := b.analytics.Summary(ctx)
	if err != nil {
		b.log.Error("summary failed", "err", err)
		b.reply(chatID, "Ошибка расчёта сводки")
		return
	}
	text := fmt.Sprintf(
		"📊 Сводка\n\n"+
			"Выручка: %s\n"+
			"Себестоимость проданного: %s\n"+
			"Прибыль с продаж: %s\n"+
			"Маржа: %s%%\n\n"+
			"Стоимость остатков: %s\n"+
			"Затраты всего: %s\n"+
			"Прибыль за вычетом остатков: %s\n"+
			"Выпусков продукции: %d",
		money(s.TotalRevenue), money(s.SoldProductsCost), money(s.SalesProfit),
		s.ProfitMargin.String(),
		money(s.InventoryValue), money(s.TotalCosts), money(s.NetProfit),
		s.TotalProductions)
	b.reply(chatID, text)
}

func (b *Bot) showTop(ctx context.Context, chatID int64) {
	top, err := b.analytics.TopSelling(ctx, topLimit)
	if err != nil {
		b.log.Error("top selling failed", "err", err)
		b.reply(chatID, "Ошибка расчёта топа продаж")
		return
	}
	if len(top) == 0 {
		b.reply(chatID, "Продаж пока не было")
		return
	}
	var sb strings.Builder
	sb.WriteString("🏆 Топ продаж:\n\n")
	for i, t := range top {
		fmt.Fprintf(&sb, "%d. %s — %d шт, выручка %s, прибыль %s\n",
			i+1, t.Name, t.QuantitySold, money(t.Revenue), money(t.Profit))
	}
	b.reply(chatID, sb.String())
}

func (b *Bot) showLowStock(ctx context.Context, chatID int64) {
	out, err := b.analytics.OutOfStock(ctx)
	if err != nil {
		b.log.Error("out of stock failed", "err", err)
		b.reply(chatID, "Ошибка загрузки остатков")
		return
	}
	low, err := b.analytics.LowStock(ctx)
	if err != nil {
		b.log.Error("low stock failed", "err", err)
		b.reply(chatID, "Ошибка загрузки остатков")
		return
	}
	if len(out) == 0 && len(low) == 0 {
		b.reply(chatID, "Все остатки в норме ✅")
		return
	}
	var sb strings.Builder
	if len(out) > 0 {
		sb.WriteString("🔴 Закончились:\n")
		for _, p := range out {
			fmt.Fprintf(&sb, "• %s\n", p.Name)
		}
	}
	if len(low) > 0 {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("🟡 Заканчиваются:\n")
		for _, p := range low {
			fmt.Fprintf(&sb, "• %s — осталось %d\n", p.Name, p.Quantity)
		}
	}
	b.reply(chatID, sb.String())
}
