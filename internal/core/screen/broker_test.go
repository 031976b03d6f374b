package screen

import "testing"

func TestBrokerLabel(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"台積電元大45購01", "元大"},
		{"長榮凱基92購05", "凱基"},
		{"臺指統一12售03", "統一"},
		{"世芯第一金88購02", "第一金"},
		{"無法辨識的簡稱購01", "其他"},
		{"", "其他"},
	}
	for _, c := range cases {
		if got := BrokerLabel(c.name); got != c.want {
			t.Errorf("BrokerLabel(%q) = %q, 期望 %q", c.name, got, c.want)
		}
	}
}
