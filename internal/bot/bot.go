package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/stockbook/internal/backup"
	"github.com/Spok95/stockbook/internal/dialog"
	"github.com/Spok95/stockbook/internal/domain/analytics"
	"github.com/Spok95/stockbook/internal/domain/ledger"
	"github.com/Spok95/stockbook/internal/domain/products"
)

type Bot struct {
	api       *tgbotapi.BotAPI
	log       *slog.Logger
	states    *dialog.Repo
	ledger    *ledger.Service
	analytics *analytics.Service
	backup    *backup.Service
	products  *products.Repo
	adminChat int64
	lowStock  int64
}

func New(api *tgbotapi.BotAPI, log *slog.Logger,
	statesRepo *dialog.Repo, ledgerSvc *ledger.Service,
	analyticsSvc *analytics.Service, backupSvc *backup.Service,
	productsRepo *products.Repo, adminChatID int64, lowStockThreshold int64) *Bot {

	return &Bot{
		api: api, log: log, states: statesRepo,
		ledger: ledgerSvc, analytics: analyticsSvc, backup: backupSvc,
		products: productsRepo, adminChat: adminChatID, lowStock: lowStockThreshold,
	}
}

func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd := <-updates:
			if upd.Message != nil {
				b.onMessage(ctx, upd)
			}
		}
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send failed", "err", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

// downloadTelegramFile скачивает файл по FileID через Telegram API.
func (b *Bot) downloadTelegramFile(fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file url: %w", err)
	}

	resp, err := http.Get(url)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram returned status %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	chatID := msg.Chat.ID

	if msg.IsCommand() {
		b.handleCommand(ctx, chatID, msg)
		return
	}

	st, err := b.states.Get(ctx, chatID)
	if err != nil {
		b.log.Error("dialog state load failed", "err", err)
		b.reply(chatID, "Внутренняя ошибка, попробуйте ещё раз")
		return
	}

	// файлы и фото обрабатываются только в ожидающих состояниях
	if msg.Document != nil {
		if st.State == dialog.StateImportWaitFile {
			b.handleImportFile(ctx, chatID, msg.Document)
			return
		}
		b.reply(chatID, "Сейчас файл не ожидается. Для восстановления из бэкапа — /import")
		return
	}
	if len(msg.Photo) > 0 {
		if st.State == dialog.StatePhotoWait {
			b.handlePhotoUpload(ctx, chatID, st, msg.Photo)
			return
		}
		b.reply(chatID, "Сейчас фото не ожидается. Чтобы добавить фото товара — /photo")
		return
	}

	b.handleStateInput(ctx, chatID, st, msg.Text)
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, msg *tgbotapi.Message) {
	// любая команда сбрасывает незавершённый диалог
	_ = b.states.Reset(ctx, chatID)

	switch msg.Command() {
	case "start", "help":
		b.reply(chatID, helpText)
	case "products":
		b.showProducts(ctx, chatID)
	case "new":
		b.startNewProduct(ctx, chatID)
	case "sale":
		b.startPick(ctx, chatID, dialog.StateSalePick, "Продажа. Выберите товар (номер из списка):")
	case "production":
		b.startPick(ctx, chatID, dialog.StateProdPick, "Выпуск продукции. Выберите товар (номер из списка):")
	case "adjust":
		b.startPick(ctx, chatID, dialog.StateAdjPick, "Корректировка. Выберите товар (номер из списка):")
	case "edit":
		b.startPick(ctx, chatID, dialog.StateEditPick, "Редактирование. Выберите товар (номер из списка):")
	case "delete":
		b.startPick(ctx, chatID, dialog.StateDelPick, "Удаление товара. Выберите товар (номер из списка):")
	case "photo":
		b.startPick(ctx, chatID, dialog.StatePhotoPick, "Фото товара. Выберите товар (номер из списка):")
	case "summary":
		b.showSummary(ctx, chatID)
	case "top":
		b.showTop(ctx, chatID)
	case "low":
		b.showLowStock(ctx, chatID)
	case "report":
		b.sendLedgerReport(ctx, chatID)
	case "export":
		b.sendBackup(ctx, chatID)
	case "import":
		b.startImport(ctx, chatID)
	case "cancel":
		b.reply(chatID, "Ок, отменено")
	default:
		b.reply(chatID, "Не знаю такую команду. Список — /help")
	}
}

const helpText = `Учёт товаров и продаж.

/products — список товаров
/new — завести товар
/sale — продажа
/production — выпуск продукции
/adjust — корректировка остатка
/edit — изменить цену/заметки
/photo — добавить фото товара
/delete — удалить товар

/summary — финансовая сводка
/top — лидеры продаж
/low — заканчивающиеся товары
/report — журнал операций (Excel)

/export — выгрузить бэкап (JSON)
/import — восстановить из бэкапа (полная замена!)
/cancel — прервать текущий диалог`
