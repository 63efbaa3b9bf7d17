package i18n

import "fmt"

func Welcome(lang Lang) string {
	if lang == RU {
		return "✅ Добро пожаловать!"
	}
	return "✅ Welcome!"
}

func OnboardingError(lang Lang) string {
	if lang == RU {
		return "❌ Ошибка. Напишите мне в личку: @jp_agency"
	}
	return "❌ Error. Message me: @jp_agency"
}

func MySubscriptionButton(lang Lang) string {
	if lang == RU {
		return "Моя подписка"
	}
	return "My subscription"
}

func TariffsButton(lang Lang) string {
	if lang == RU {
		return "Тарифы"
	}
	return "Plans"
}

func ChooseTariff(lang Lang) string {
	if lang == RU {
		return "Выберите тариф:"
	}
	return "Choose a plan:"
}

func NoTariffs(lang Lang) string {
	if lang == RU {
		return "Пока нет доступных тарифов."
	}
	return "No plans available yet."
}

func ChoosePaymentMethod(lang Lang) string {
	if lang == RU {
		return "Выберите способ оплаты:"
	}
	return "Choose a payment method:"
}

func PayByCard(lang Lang) string {
	if lang == RU {
		return "💳 Картой"
	}
	return "💳 Card"
}

func PayByCrypto(lang Lang) string {
	if lang == RU {
		return "🪙 Криптовалютой"
	}
	return "🪙 Crypto"
}

func CardPaymentLink(lang Lang, link string) string {
	if lang == RU {
		return fmt.Sprintf("Оплатите по ссылке:\n%s\n\nДоступ откроется автоматически после оплаты.", link)
	}
	return fmt.Sprintf("Pay via the link:\n%s\n\nAccess opens automatically after payment.", link)
}

func CryptoPaymentLink(lang Lang, link string) string {
	if lang == RU {
		return fmt.Sprintf("Счёт создан. Оплатите по ссылке:\n%s\n\nПосле подтверждения оплаты доступ откроется автоматически.", link)
	}
	return fmt.Sprintf("Invoice created. Pay via the link:\n%s\n\nAccess opens automatically once the payment is confirmed.", link)
}

func PaymentPending(lang Lang) string {
	if lang == RU {
		return "Счёт ещё не оплачен. Доступ откроется автоматически после подтверждения оплаты."
	}
	return "Your invoice is not paid yet. Access opens automatically once the payment is confirmed."
}

func AlreadySubscribed(lang Lang) string {
	if lang == RU {
		return "У вас уже есть активная подписка на этот тариф."
	}
	return "You already have an active subscription to this plan."
}

func PaymentFailed(lang Lang) string {
	if lang == RU {
		return "Не удалось создать счёт. Попробуйте позже."
	}
	return "Failed to create the invoice. Please try again later."
}

func PaymentSuccess(lang Lang, title string, until string) string {
	if lang == RU {
		return fmt.Sprintf("✅ Оплата получена! Подписка «%s» активна до %s.", title, until)
	}
	return fmt.Sprintf("✅ Payment received! Your \"%s\" subscription is active until %s.", title, until)
}

func InviteLink(lang Lang, link string) string {
	if lang == RU {
		return fmt.Sprintf("Ваша персональная ссылка для входа в канал (одноразовая):\n%s", link)
	}
	return fmt.Sprintf("Your personal one-time link to join the channel:\n%s", link)
}

func NoActiveSubscription(lang Lang) string {
	if lang == RU {
		return "У вас нет активной подписки."
	}
	return "You have no active subscription."
}

func SubscriptionStatus(lang Lang, title string, until string) string {
	if lang == RU {
		return fmt.Sprintf("Подписка «%s» активна до %s.", title, until)
	}
	return fmt.Sprintf("\"%s\" subscription is active until %s.", title, until)
}

func UnderDevelopment(lang Lang) string {
	if lang == RU {
		return "🚧 В разработке."
	}
	return "🚧 Under development."
}

func GenericError(lang Lang) string {
	if lang == RU {
		return "Произошла ошибка. Попробуйте позже."
	}
	return "Something went wrong. Please try again later."
}
