package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"github.com/Spok95/stockbook/internal/backup"
	"github.com/Spok95/stockbook/internal/dialog"
	"github.com/Spok95/stockbook/internal/domain/photos"
)

// sendBackup выгружает все данные одним JSON-файлом.
func (b *Bot) sendBackup(ctx context.Context, chatID int64) {
	data, err := b.backup.Export(ctx)
	if err != nil {
		b.log.Error("backup export failed", "err", err)
		b.reply(chatID, "Не удалось собрать бэкап")
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  backup.FileName(time.Now()),
		Bytes: data,
	})
	doc.Caption = "Полная выгрузка данных. Восстановление — /import."
	b.send(doc)
}

func (b *Bot) startImport(ctx context.Context, chatID int64) {
	_ = b.states.Set(ctx, chatID, dialog.StateImportWaitFile, dialog.Payload{})
	b.reply(chatID, "Пришлите JSON-файл бэкапа.\n"+
		"Внимание: импорт полностью заменит текущие данные. Отмена — /cancel")
}

// handleImportFile проверяет присланный файл и просит подтверждение.
// Сам импорт деструктивный, поэтому выполняется только после явного
// «ЗАМЕНИТЬ».
func (b *Bot) handleImportFile(ctx context.Context, chatID int64, doc *tgbotapi.Document) {
	data, err := b.downloadTelegramFile(doc.FileID)
	if err != nil {
		b.log.Error("import file download failed", "err", err)
		b.reply(chatID, "Не удалось скачать файл, попробуйте ещё раз")
		return
	}

	env, err := b.backup.Parse(data)
	if err != nil {
		_ = b.states.Reset(ctx, chatID)
		b.reply(chatID, "Файл не принят: "+importErrorText(err))
		return
	}

	_ = b.states.Set(ctx, chatID, dialog.StateImportConfirm, dialog.Payload{
		"file_id": doc.FileID,
	})
	b.reply(chatID, fmt.Sprintf(
		"Файл корректен: %d товаров, %d записей журнала, %d фото (выгрузка от %s).\n\n"+
			"Текущие данные будут БЕЗВОЗВРАТНО заменены.\nДля подтверждения введите ЗАМЕНИТЬ:",
		len(env.Products), len(env.Movements), len(env.Photos),
		env.ExportedAt.Format("02.01.2006 15:04")))
}

func (b *Bot) finishImport(ctx context.Context, chatID int64, st *dialog.Item, text string) {
	if text != "ЗАМЕНИТЬ" {
		_ = b.states.Reset(ctx, chatID)
		b.reply(chatID, "Импорт отменён, данные не тронуты")
		return
	}
	fileID, ok := dialog.GetString(st.Payload, "file_id")
	if !ok {
		_ = b.states.Reset(ctx, chatID)
		b.reply(chatID, "Файл потерян, начните заново: /import")
		return
	}

	data, err := b.downloadTelegramFile(fileID)
	if err != nil {
		b.log.Error("import file re-download failed", "err", err)
		b.reply(chatID, "Не удалось скачать файл, начните заново: /import")
		_ = b.states.Reset(ctx, chatID)
		return
	}

	env, err := b.backup.Import(ctx, data)
	_ = b.states.Reset(ctx, chatID)
	if err != nil {
		b.log.Error("backup import failed", "err", err)
		b.reply(chatID, "Импорт не выполнен: "+importErrorText(err)+"\nДанные не изменены.")
		return
	}
	b.reply(chatID, fmt.Sprintf("Готово. Восстановлено: %d товаров, %d записей журнала, %d фото.",
		len(env.Products), len(env.Movements), len(env.Photos)))
}

// handlePhotoUpload сохраняет самое крупное из присланных превью.
func (b *Bot) handlePhotoUpload(ctx context.Context, chatID int64, st *dialog.Item, sizes []tgbotapi.PhotoSize) {
	if len(sizes) == 0 {
		b.reply(chatID, "Не удалось прочитать изображение, пришлите ещё раз")
		return
	}
	// Telegram присылает превью по возрастанию размера
	largest := sizes[len(sizes)-1]
	smallest := sizes[0]

	data, err := b.downloadTelegramFile(largest.FileID)
	if err != nil {
		b.log.Error("photo download failed", "err", err)
		b.reply(chatID, "Не удалось скачать фото, попробуйте ещё раз")
		return
	}
	var thumb []byte
	if smallest.FileID != largest.FileID {
		if t, err := b.downloadTelegramFile(smallest.FileID); err == nil {
			thumb = t
		}
	}

	productID, _ := dialog.GetString(st.Payload, "product_id")
	name, _ := dialog.GetString(st.Payload, "product_name")

	ph := &photos.Photo{
		ID:        uuid.NewString(),
		ProductID: productID,
		MimeType:  "image/jpeg",
		Width:     int32(largest.Width),
		Height:    int32(largest.Height),
		Data:      data,
		Thumbnail: thumb,
		CreatedAt: time.Now().UTC(),
	}
	err = b.ledger.AttachPhoto(ctx, ph)
	_ = b.states.Reset(ctx, chatID)
	if err != nil {
		b.reply(chatID, "Фото не сохранено: "+errorText(err))
		return
	}
	b.reply(chatID, fmt.Sprintf("Фото для «%s» сохранено (%d×%d).", name, largest.Width, largest.Height))
}

func importErrorText(err error) string {
	switch e := err.(type) {
	case *backup.MalformedBackupError:
		return "файл повреждён или не является бэкапом (" + e.Reason + ")"
	case *backup.FutureSchemaError:
		return fmt.Sprintf("файл создан более новой версией (схема %d, поддерживается до %d)", e.Version, e.Supported)
	case *backup.TooLargeError:
		return fmt.Sprintf("файл слишком большой (%d байт при лимите %d)", e.Size, e.Max)
	}
	return "внутренняя ошибка, попробуйте позже"
}
