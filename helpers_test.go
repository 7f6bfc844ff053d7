package relay

// Message kinds and types shared by the package tests.

const (
	kindPing = Kind("ping")
	kindPong = Kind("pong")
	kindNews = Kind("news")
	kindStop = Kind("stop")
)

type pingMsg struct {
	Base
	Value int `msgpack:"value"`
}

func (*pingMsg) Kind() Kind { return kindPing }

type pongMsg struct {
	Base
	Value int `msgpack:"value"`
}

func (*pongMsg) Kind() Kind { return kindPong }

type newsMsg struct {
	Base
	Text string `msgpack:"text"`
}

func (*newsMsg) Kind() Kind { return kindNews }

type stopMsg struct {
	Base
}

func (*stopMsg) Kind() Kind { return kindStop }

func newPing(sender string, value int) *pingMsg {
	return &pingMsg{Base: NewBase(sender), Value: value}
}

func newPong(sender string, value int) *pongMsg {
	return &pongMsg{Base: NewBase(sender), Value: value}
}

func newNews(sender, text string) *newsMsg {
	return &newsMsg{Base: NewBase(sender), Text: text}
}
