package nlp

import (
	"github.com/wondertoys/support-chatbot/internal/model"
)

// DefaultTrainingData is the built-in intent corpus. Examples pass through
// Normalize before vectorization, so punctuation and casing here are
// cosmetic. Greetings deliberately repeat "hello" so a bare greeting clears
// the default confidence threshold.
var DefaultTrainingData = map[string][]string{
	model.IntentGreeting: {
		"hello",
		"hello there",
		"hi hello",
		"well hello",
		"hello good morning",
		"hey there",
		"good afternoon",
		"你好",
		"你好！",
		"你好 在吗",
		"你好 请问",
	},
	model.IntentGoodbye: {
		"bye",
		"goodbye",
		"goodbye now",
		"ok goodbye",
		"see you later",
		"thanks bye",
		"that is all goodbye",
		"have a nice day bye",
		"再见",
	},
	model.IntentOrderStatus: {
		"where is my order",
		"what is the status of my order",
		"has my order shipped yet",
		"check my order status",
		"when will my package arrive",
		"track my order",
		"我的订单在哪里",
	},
	model.IntentCancelOrder: {
		"cancel my order",
		"cancel the order placed yesterday",
		"please cancel this order",
		"refund this order please",
		"stop the order from shipping",
		"取消订单",
	},
	model.IntentProductInquiry: {
		"do you have any toys",
		"what gifts do you sell",
		"i want a gift",
		"i am looking for a gift",
		"a present for my daughter",
		"show me your products",
		"is this toy in stock",
		"how much does this cost",
		"有什么玩具",
	},
}
