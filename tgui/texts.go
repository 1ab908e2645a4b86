package tgui

import (
	"fmt"

	"github.com/subgate/subgatebot/domain"
)

// User-facing texts. The bot speaks Russian; button labels and popup texts
// stored on posts come from the post itself.
const (
	textStart = "👋 Привет! Я помогаю публиковать посты, контент которых доступен " +
		"только подписчикам канала.\n\n" +
		"1. Добавьте свой канал: /addchannel\n" +
		"2. Создайте пост в меню канала: /mychannels\n" +
		"3. Опубликуйте пост, и кнопка проверки подписки появится под ним."

	textHelp = "ℹ️ Как это работает:\n\n" +
		"/addchannel — зарегистрировать канал. Бот должен быть администратором канала.\n" +
		"/mychannels — список ваших каналов: создание постов, настройки, удаление.\n" +
		"/menu — главное меню.\n" +
		"/cancel — прервать текущее действие.\n\n" +
		"Пост состоит из текста, необязательного изображения, текста для подписчиков, " +
		"текста для неподписанных и подписи кнопки проверки."

	textMenu = "📋 Главное меню"

	textAddChannelPrompt = "Отправьте @username канала или его числовой ID " +
		"(например, -1001234567890).\n\nБот должен быть администратором канала."
	textChannelNotAdmin = "❌ Вы должны быть администратором этого канала."
	textChannelResolveFail = "❌ Не удалось найти канал. Проверьте @username или ID " +
		"и отправьте ещё раз."

	textNoChannels = "У вас пока нет каналов. Добавьте первый: /addchannel"

	textEnterMessage = "📝 Введите текст поста:"
	textPromptPhoto  = "🖼 Отправьте изображение для поста или пропустите этот шаг."
	textPhotoAdded   = "✅ Изображение добавлено."
	textPromptSuccess = "✅ Введите текст, который увидит подписанный пользователь " +
		"(до 190 символов):"
	textPromptFail = "❌ Введите текст для неподписанных (до 190 символов) " +
		"или используйте стандартный."
	textPromptButton = "🔘 Введите подпись кнопки проверки или используйте стандартную " +
		"(«" + domain.DefaultButtonText + "»)."

	textPostCreated  = "🎉 Пост создан! Вот как он будет выглядеть:"
	textPostUpdated  = "✅ Пост обновлён."
	textCancelled    = "Действие отменено."
	textNotAvailable = "Сейчас изображение не ожидается."
	textGenericError = "Произошла ошибка. Попробуйте ещё раз."
	textSaveFailed   = "Не удалось сохранить пост. Начните создание заново."

	textPublished     = "✅ Пост опубликован в канале!"
	textPublishFailed = "❌ Не удалось опубликовать пост. Убедитесь, что бот остаётся " +
		"администратором канала, и попробуйте снова."

	textCheckUnavailable = "Не удалось проверить подписку. Попробуйте позже."

	textConfirmPostDelete = "Удалить пост? Это действие необратимо."
	textManageAdmins      = "👥 Управление администраторами пока недоступно. " +
		"Доступ есть у каждого, кто добавил этот канал в бота."
	textPostDeleted    = "🗑 Пост удалён."
	textChannelDeleted = "🗑 Канал и все его посты удалены."
	textConfirmChannelDelete = "Удалить канал? Все его посты будут удалены. " +
		"Это действие необратимо."
	textNoPosts     = "В этом канале пока нет постов."
	textPostMissing = "Пост не найден. Возможно, он был удалён."
	textEditPrompts = "Отправьте новое значение:"
)

func textTooLong(length int) string {
	return fmt.Sprintf("⚠️ Слишком длинный текст: %d символов при лимите %d. "+
		"Сократите и отправьте снова.", length, domain.PopupTextLimit)
}

func textChannelAdded(name string) string {
	return fmt.Sprintf("✅ Канал «%s» добавлен!", name)
}

func textChannelMenu(name string) string {
	return fmt.Sprintf("📢 Канал «%s»", name)
}
