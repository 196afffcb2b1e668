package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Spok95/stockbook/internal/dialog"
	"github.com/Spok95/stockbook/internal/domain/costing"
	"github.com/Spok95/stockbook/internal/domain/ledger"
	"github.com/Spok95/stockbook/internal/domain/products"
)

func (b *Bot) handleStateInput(ctx context.Context, chatID int64, st *dialog.Item, text string) {
	text = strings.TrimSpace(text)

	switch st.State {
	case dialog.StateIdle:
		b.reply(chatID, "Выберите действие: /help")

	// --- новый товар ---
	case dialog.StateNewName:
		if text == "" {
			b.reply(chatID, "Название не может быть пустым. Введите название товара:")
			return
		}
		st.Payload["name"] = text
		_ = b.states.Set(ctx, chatID, dialog.StateNewCat, st.Payload)
		b.reply(chatID, "Категория (свободный текст, например: "+strings.Join(products.SuggestedCategories, ", ")+"):")
	case dialog.StateNewCat:
		st.Payload["category"] = text
		_ = b.states.Set(ctx, chatID, dialog.StateNewQty, st.Payload)
		b.reply(chatID, "Начальный остаток (целое число, можно 0):")
	case dialog.StateNewQty:
		qty, err := strconv.ParseInt(text, 10, 64)
		if err != nil || qty < 0 {
			b.reply(chatID, "Нужно целое число ≥ 0. Начальный остаток:")
			return
		}
		st.Payload["qty"] = qty
		_ = b.states.Set(ctx, chatID, dialog.StateNewCost, st.Payload)
		b.reply(chatID, "Себестоимость единицы (число, либо «-» если неизвестна):")
	case dialog.StateNewCost:
		if text != "-" {
			cost, err := parseMoney(text)
			if err != nil || cost.IsNegative() {
				b.reply(chatID, "Нужно число ≥ 0 либо «-». Себестоимость единицы:")
				return
			}
			st.Payload["cost"] = cost.String()
		}
		_ = b.states.Set(ctx, chatID, dialog.StateNewPrice, st.Payload)
		b.reply(chatID, "Цена продажи:")
	case dialog.StateNewPrice:
		price, err := parseMoney(text)
		if err != nil || price.IsNegative() {
			b.reply(chatID, "Нужно число ≥ 0. Цена продажи:")
			return
		}
		b.finishNewProduct(ctx, chatID, st, price)

	// --- выбор товара ---
	case dialog.StateSalePick:
		b.pickProduct(ctx, chatID, st, text, dialog.StateSaleQty, "Количество к продаже:")
	case dialog.StateProdPick:
		b.pickProduct(ctx, chatID, st, text, dialog.StateProdQty, "Сколько единиц выпущено:")
	case dialog.StateAdjPick:
		b.pickProduct(ctx, chatID, st, text, dialog.StateAdjDelta, "Корректировка со знаком (например -2 или 5):")
	case dialog.StateEditPick:
		b.pickProduct(ctx, chatID, st, text, dialog.StateEditPrice, "Новая цена («-» — не менять):")
	case dialog.StateDelPick:
		b.pickProduct(ctx, chatID, st, text, dialog.StateDelConfirm,
			"Товар будет удалён вместе с фото; журнал операций останется.\nДля подтверждения введите УДАЛИТЬ:")
	case dialog.StatePhotoPick:
		b.pickProduct(ctx, chatID, st, text, dialog.StatePhotoWait, "Пришлите фото товара:")

	// --- продажа ---
	case dialog.StateSaleQty:
		qty, err := strconv.ParseInt(text, 10, 64)
		if err != nil || qty <= 0 {
			b.reply(chatID, "Нужно целое число > 0. Количество к продаже:")
			return
		}
		st.Payload["qty"] = qty
		_ = b.states.Set(ctx, chatID, dialog.StateSalePrice, st.Payload)
		b.reply(chatID, "Цена за единицу («-» — по цене товара):")
	case dialog.StateSalePrice:
		b.finishSale(ctx, chatID, st, text)

	// --- выпуск ---
	case dialog.StateProdQty:
		qty, err := strconv.ParseInt(text, 10, 64)
		if err != nil || qty <= 0 {
			b.reply(chatID, "Нужно целое число > 0. Сколько единиц выпущено:")
			return
		}
		st.Payload["qty"] = qty
		_ = b.states.Set(ctx, chatID, dialog.StateProdCost, st.Payload)
		b.reply(chatID, "Себестоимость единицы выпуска:")
	case dialog.StateProdCost:
		b.finishProduction(ctx, chatID, st, text)

	// --- корректировка ---
	case dialog.StateAdjDelta:
		b.finishAdjustment(ctx, chatID, st, text)

	// --- редактирование ---
	case dialog.StateEditPrice:
		if text != "-" {
			price, err := parseMoney(text)
			if err != nil || price.IsNegative() {
				b.reply(chatID, "Нужно число ≥ 0 либо «-». Новая цена:")
				return
			}
			st.Payload["price"] = price.String()
		}
		_ = b.states.Set(ctx, chatID, dialog.StateEditNotes, st.Payload)
		b.reply(chatID, "Новые заметки («-» — не менять):")
	case dialog.StateEditNotes:
		b.finishEdit(ctx, chatID, st, text)

	// --- удаление ---
	case dialog.StateDelConfirm:
		if text != "УДАЛИТЬ" {
			_ = b.states.Reset(ctx, chatID)
			b.reply(chatID, "Удаление отменено")
			return
		}
		b.finishDelete(ctx, chatID, st)

	case dialog.StatePhotoWait:
		b.reply(chatID, "Жду изображение. Отмена — /cancel")

	// --- импорт бэкапа ---
	case dialog.StateImportWaitFile:
		b.reply(chatID, "Жду JSON-файл бэкапа. Отмена — /cancel")
	case dialog.StateImportConfirm:
		b.finishImport(ctx, chatID, st, text)

	default:
		_ = b.states.Reset(ctx, chatID)
		b.reply(chatID, "Диалог сброшен. Список команд — /help")
	}
}

func (b *Bot) startNewProduct(ctx context.Context, chatID int64) {
	_ = b.states.Set(ctx, chatID, dialog.StateNewName, dialog.Payload{})
	b.reply(chatID, "Название товара:")
}

// startPick показывает нумерованный список и переводит диалог в
// состояние выбора.
func (b *Bot) startPick(ctx context.Context, chatID int64, state dialog.State, prompt string) {
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
	_ = b.states.Set(ctx, chatID, state, dialog.Payload{})
	b.reply(chatID, prompt+"\n\n"+productList(list))
}

// pickProduct разбирает номер из списка и кладёт выбранный товар в payload.
func (b *Bot) pickProduct(ctx context.Context, chatID int64, st *dialog.Item, text string, next dialog.State, prompt string) {
	list, err := b.products.List(ctx)
	if err != nil {
		b.log.Error("products list failed", "err", err)
		b.reply(chatID, "Ошибка загрузки товаров")
		return
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 1 || n > len(list) {
		b.reply(chatID, fmt.Sprintf("Введите номер товара от 1 до %d:", len(list)))
		return
	}
	p := list[n-1]
	st.Payload["product_id"] = p.ID
	st.Payload["product_name"] = p.Name
	_ = b.states.Set(ctx, chatID, next, st.Payload)
	b.reply(chatID, fmt.Sprintf("Товар: %s (остаток %d)\n%s", p.Name, p.Quantity, prompt))
}

func (b *Bot) finishNewProduct(ctx context.Context, chatID int64, st *dialog.Item, price decimal.Decimal) {
	name, _ := dialog.GetString(st.Payload, "name")
	category, _ := dialog.GetString(st.Payload, "category")
	qty, _ := dialog.GetInt(st.Payload, "qty")

	var initialCost *decimal.Decimal
	if s, ok := dialog.GetString(st.Payload, "cost"); ok {
		if c, err := decimal.NewFromString(s); err == nil {
			initialCost = &c
		}
	}

	p, err := b.ledger.CreateProduct(ctx, name, category, qty, price, initialCost, "")
	_ = b.states.Reset(ctx, chatID)
	if err != nil {
		b.log.Error("create product failed", "err", err)
		b.reply(chatID, "Не удалось создать товар: "+errorText(err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Товар «%s» создан.\nОстаток: %d, цена: %s, себестоимость: %s",
		p.Name, p.Quantity, money(p.Price), money(p.AverageCost)))
}

func (b *Bot) finishSale(ctx context.Context, chatID int64, st *dialog.Item, text string) {
	var unitPrice *decimal.Decimal
	if text != "-" {
		price, err := parseMoney(text)
		if err != nil {
			b.reply(chatID, "Нужно число либо «-». Цена за единицу:")
			return
		}
		unitPrice = &price
	}
	productID, _ := dialog.GetString(st.Payload, "product_id")
	qty, _ := dialog.GetInt(st.Payload, "qty")

	p, m, err := b.ledger.RegisterSale(ctx, productID, qty, unitPrice, "")
	_ = b.states.Reset(ctx, chatID)
	if err != nil {
		b.reply(chatID, "Продажа не проведена: "+errorText(err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Продано %d × %s на сумму %s.\nОстаток «%s»: %d",
		qty, m.ProductSnapshot.Name, money(m.TotalAmount), p.Name, p.Quantity))
	b.maybeNotifyLow(p)
}

func (b *Bot) finishProduction(ctx context.Context, chatID int64, st *dialog.Item, text string) {
	cost, err := parseMoney(text)
	if err != nil {
		b.reply(chatID, "Нужно число. Себестоимость единицы выпуска:")
		return
	}
	productID, _ := dialog.GetString(st.Payload, "product_id")
	qty, _ := dialog.GetInt(st.Payload, "qty")

	p, m, err := b.ledger.RegisterProduction(ctx, productID, qty, cost, "")
	_ = b.states.Reset(ctx, chatID)
	if err != nil {
		b.reply(chatID, "Выпуск не проведён: "+errorText(err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Оприходовано %d × %s, затраты %s.\nОстаток: %d, новая себестоимость: %s",
		qty, m.ProductSnapshot.Name, money(m.TotalAmount), p.Quantity, money(p.AverageCost)))
}

func (b *Bot) finishAdjustment(ctx context.Context, chatID int64, st *dialog.Item, text string) {
	delta, err := strconv.ParseInt(strings.TrimPrefix(text, "+"), 10, 64)
	if err != nil {
		b.reply(chatID, "Нужно целое число со знаком, например -2 или 5:")
		return
	}
	productID, _ := dialog.GetString(st.Payload, "product_id")

	p, _, err := b.ledger.RegisterAdjustment(ctx, productID, delta, "")
	_ = b.states.Reset(ctx, chatID)
	if err != nil {
		b.reply(chatID, "Корректировка не проведена: "+errorText(err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Остаток «%s» скорректирован на %+d, теперь %d", p.Name, delta, p.Quantity))
	b.maybeNotifyLow(p)
}

func (b *Bot) finishEdit(ctx context.Context, chatID int64, st *dialog.Item, text string) {
	var patch ledger.ProductPatch
	if s, ok := dialog.GetString(st.Payload, "price"); ok {
		if price, err := decimal.NewFromString(s); err == nil {
			patch.Price = &price
		}
	}
	if text != "-" {
		patch.Notes = &text
	}

	productID, _ := dialog.GetString(st.Payload, "product_id")
	p, err := b.ledger.UpdateProduct(ctx, productID, patch)
	_ = b.states.Reset(ctx, chatID)
	if err != nil {
		b.reply(chatID, "Не удалось сохранить: "+errorText(err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Карточка «%s» обновлена. Цена: %s", p.Name, money(p.Price)))
}

func (b *Bot) finishDelete(ctx context.Context, chatID int64, st *dialog.Item) {
	productID, _ := dialog.GetString(st.Payload, "product_id")
	name, _ := dialog.GetString(st.Payload, "product_name")

	err := b.ledger.DeleteProduct(ctx, productID)
	_ = b.states.Reset(ctx, chatID)
	if err != nil {
		b.reply(chatID, "Не удалось удалить: "+errorText(err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Товар «%s» удалён. История операций по нему сохранена.", name))
}

// maybeNotifyLow шлёт предупреждение в админ-чат при нулевом или
// низком остатке.
func (b *Bot) maybeNotifyLow(p *products.Product) {
	if b.adminChat == 0 {
		return
	}
	if p.Quantity == 0 {
		b.reply(b.adminChat, fmt.Sprintf("⚠️ «%s» закончился.", p.Name))
	} else if p.Quantity < b.lowStock {
		b.reply(b.adminChat, fmt.Sprintf("⚠️ «%s» заканчивается: осталось %d.", p.Name, p.Quantity))
	}
}

// errorText переводит типовые отказы в понятный пользователю текст.
func errorText(err error) string {
	var insufficient *costing.InsufficientStockError
	if errors.As(err, &insufficient) {
		return fmt.Sprintf("недостаточно остатка: есть %d, запрошено %d", insufficient.Available, insufficient.Requested)
	}
	var negative *costing.NegativeStockError
	if errors.As(err, &negative) {
		return fmt.Sprintf("остаток ушёл бы в минус: есть %d, корректировка %+d", negative.Available, negative.Delta)
	}
	switch {
	case errors.Is(err, costing.ErrInvalidQuantity):
		return "количество должно быть больше нуля"
	case errors.Is(err, costing.ErrInvalidPrice):
		return "цена должна быть больше нуля"
	case errors.Is(err, costing.ErrInvalidCost):
		return "себестоимость не может быть отрицательной"
	case errors.Is(err, costing.ErrZeroAdjustment):
		return "корректировка на ноль не имеет смысла"
	case errors.Is(err, ledger.ErrProductNotFound):
		return "товар не найден (возможно, удалён)"
	case errors.Is(err, ledger.ErrMovementNotFound):
		return "запись журнала не найдена"
	}
	return "внутренняя ошибка, попробуйте позже"
}

func parseMoney(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(s), ",", "."))
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2) + " ₽"
}
