package moderation

// cannedSmokingReplies are posted publicly when the smoking watcher fires.
var cannedSmokingReplies = []string{
	"Another smoke break? The stand-down thread misses you already. 🚬",
	"Smoke 'em if you got 'em... but your stand-down won't write itself! 💨",
	"Detected: one (1) smoke break. Productivity levels dropping. 📉",
	"Puff puff... don't forget to pass by the stand-down thread! 🌬️",
	"The smoking area called, they said you live there now. 🏠",
}
