package main

// Sample is one product fed to the endpoint.
type Sample struct {
	Name    string
	Keyword string
	Text    string
}

// Samples are product descriptions of varying length written with typical
// merchant mistakes. Used by the timing mode.
var Samples = []Sample{
	{
		Name:    "tiny",
		Keyword: "Ceramic Mug",
		Text:    "Big mug for coffe or tea, dishwasher safe and realy nice colour.",
	},
	{
		Name:    "short",
		Keyword: "Trail Runner X",
		Text: "Lightweight running shoe for trails. The sole have extra grip for wet rocks and the upper is breathable mesh " +
			"so you feet stay dry. Available in blue and black.",
	},
	{
		Name:    "medium",
		Keyword: "Merino Base Layer",
		Text: "This base layer is made from 100% merino wool that is soft to the skin and dont itch like normal wool. " +
			"It keep you warm when is cold and cool when you sweat, perfect for hiking, skiing or just walking the dog in winter. " +
			"The flatlock seams avoid chafing under a backpack and the long cut stay tucked in. Machine washable on wool program, " +
			"no need to dry clean. Comes in sizes XS to XXL for men and women.",
	},
	{
		Name:    "long",
		Keyword: "Espresso Machine Pro",
		Text: "The Espresso Machine Pro bring cafe quality coffee to you kitchen. It have a 15 bar italian pump and a thermoblock " +
			"heater that is ready in 30 seconds, so you dont wait in the morning. The steam wand is professional grade and make silky " +
			"microfoam for latte art, even beginners can do it after few tries. The portafilter is 58mm commercial size and the machine " +
			"come with single and double baskets, a tamper and a milk jug. The water tank is 2 litres and removable for easy refill, " +
			"and there is a cup warmer on top. Stainless steel body is easy to clean and look great on any counter. Descaling program " +
			"tell you when is time to clean. We include a two year warranty and free shipping to all the country.",
	},
}

// QualitySamples cover edge cases and are printed with their output for
// manual review.
var QualitySamples = []Sample{
	{Name: "already-good", Keyword: "Linen Shirt", Text: "A relaxed linen shirt with a soft hand feel and a breathable weave for warm days."},
	{Name: "all-caps", Keyword: "Yoga Mat", Text: "BEST YOGA MAT EVER!!! NON SLIP, EXTRA THICK, FREE STRAP INCLUDED!!!"},
	{Name: "typos", Keyword: "Desk Lamp", Text: "Led desk lamp with 3 brigthness levels and usb port to charge you phone, the arm is flexibel."},
	{Name: "spanish-mix", Keyword: "Cast Iron Pan", Text: "Sarten de hierro fundido, pre-seasoned, great for steak y para el horno."},
	{Name: "accents", Keyword: "Café Crème Blend", Text: "Our café crème blend: notes of cocoa, hazelnut and a créme brûlée finish."},
	{Name: "one-word", Keyword: "Socks", Text: "socks"},
}
