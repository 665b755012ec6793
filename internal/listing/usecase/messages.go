package usecase

// Messages holds the user-facing strings the controllers surface through the host.
type Messages struct {
	MarkAsSoldConfirm string
	MarkedAsSold      string
	MarkAsSoldError   string
	LoadingError      string
	CreateSuccess     string
	CreateError       string
	UserError         string
	NoAds             string
}

var messages = map[string]Messages{
	"ru": {
		MarkAsSoldConfirm: "Вы уверены, что хотите отметить объявление как проданное?",
		MarkedAsSold:      "Объявление отмечено как проданное",
		MarkAsSoldError:   "Ошибка при обновлении статуса объявления",
		LoadingError:      "Ошибка загрузки",
		CreateSuccess:     "Объявление успешно создано и отправлено на модерацию!",
		CreateError:       "Ошибка при создании объявления",
		UserError:         "Ошибка: не удалось определить пользователя",
		NoAds:             "У вас пока нет объявлений",
	},
	"uz": {
		MarkAsSoldConfirm: "Siz eloningizni sotilgan deb belgilashga ishonchingiz komilmi?",
		MarkedAsSold:      "Elon sotilgan deb belgilandi",
		MarkAsSoldError:   "E'lon statusini yangilashda xatolik",
		LoadingError:      "Yuklash xatosi",
		CreateSuccess:     "E'lon muvaffaqiyatli yaratildi va moderatsiyaga yuborildi!",
		CreateError:       "E'lon yaratishda xatolik",
		UserError:         "Xatolik: foydalanuvchi aniqlanmadi",
		NoAds:             "Sizda hali elon yo'q",
	},
}

// DefaultMessages returns the built-in strings for lang, falling back to Russian.
func DefaultMessages(lang string) Messages {
	if m, ok := messages[lang]; ok {
		return m
	}
	return messages["ru"]
}
