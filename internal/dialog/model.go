package dialog

type State string

const (
	StateIdle State = "idle"

	// Новый товар
	StateNewName  State = "new_name"
	StateNewCat   State = "new_cat"   // категория (свободный текст или из подсказок)
	StateNewQty   State = "new_qty"   // начальный остаток
	StateNewCost  State = "new_cost"  // начальная себестоимость ("-" — нет)
	StateNewPrice State = "new_price" // цена продажи

	// Продажа
	StateSalePick  State = "sale_pick"  // выбор товара
	StateSaleQty   State = "sale_qty"   // количество
	StateSalePrice State = "sale_price" // цена ("-" — по цене товара)

	// Выпуск продукции
	StateProdPick State = "prod_pick"
	StateProdQty  State = "prod_qty"
	StateProdCost State = "prod_cost" // себестоимость единицы

	// Корректировка
	StateAdjPick  State = "adj_pick"
	StateAdjDelta State = "adj_delta" // со знаком: -2, +5

	// Редактирование карточки (цена, заметки)
	StateEditPick  State = "edit_pick"
	StateEditPrice State = "edit_price" // "-" — не менять
	StateEditNotes State = "edit_notes" // "-" — не менять

	// Удаление товара
	StateDelPick    State = "del_pick"
	StateDelConfirm State = "del_confirm"

	// Фото товара
	StatePhotoPick State = "photo_pick"
	StatePhotoWait State = "photo_wait" // ожидание изображения

	// Импорт бэкапа
	StateImportWaitFile State = "import_wait_file" // ожидание JSON-файла
	StateImportConfirm  State = "import_confirm"   // подтверждение полной замены
)

type Payload map[string]any

type Item struct {
	ChatID  int64
	State   State
	Payload Payload
}
