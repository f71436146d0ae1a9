package textutil

import (
	"strings"
	"testing"
)

func TestSanitizeStripsMarkup(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bold", "Giá vàng **tăng mạnh** hôm nay", "Giá vàng tăng mạnh hôm nay"},
		{"italic", "một *từ* nghiêng", "một từ nghiêng"},
		{"bold underscore", "nhấn __mạnh__ vào", "nhấn mạnh vào"},
		{"heading", "## Tổng quan\nNội dung chính", "Tổng quan\nNội dung chính"},
		{"link", "Xem [bài viết](https://example.vn/bai-viet) để biết thêm", "Xem bài viết để biết thêm"},
		{"image", "Hình: ![biểu đồ](https://example.vn/chart.png)", "Hình: biểu đồ"},
		{"code fence", "```go\nfmt.Println(\"xin chào\")\n```", "fmt.Println(\"xin chào\")"},
		{"inline code", "dùng lệnh `go build` để biên dịch", "dùng lệnh go build để biên dịch"},
		{"bullets", "- mục một\n- mục hai", "mục một\nmục hai"},
		{"numbered list", "1. thứ nhất\n2. thứ hai", "thứ nhất\nthứ hai"},
		{"newline collapse", "đoạn một\n\n\n\nđoạn hai", "đoạn một\n\nđoạn hai"},
		{"clean text untouched", "Hôm nay trời đẹp.", "Hôm nay trời đẹp."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Sanitize(tc.in)
			if got != tc.want {
				t.Fatalf("Sanitize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"**Đậm** và *nghiêng* với [liên kết](https://a.vn)",
		"## Tiêu đề\n\n- a\n- b\n\n```\ncode\n```",
		"- - mục lồng nhau",
		"văn bản thường không có gì đặc biệt",
		"3 * 4 * 5 = 60",
		strings.Repeat("**", 20) + "x" + strings.Repeat("**", 20),
	}
	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Fatalf("Sanitize not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestSanitizeDeeplyNestedEmphasis(t *testing.T) {
	in := strings.Repeat("**", 20) + "x" + strings.Repeat("**", 20)
	if got := Sanitize(in); got != "x" {
		t.Fatalf("nested emphasis not fully stripped: %q", got)
	}
}

func TestSanitizeKeepsDiacritics(t *testing.T) {
	in := "Tiếng Việt có dấu: ắ ằ ẵ ế ễ ộ ợ ụ đ Đ"
	if got := Sanitize(in); got != in {
		t.Fatalf("diacritics altered: %q", got)
	}
}

func TestFoldAccents(t *testing.T) {
	if got := FoldAccents("Nguồn tham khảo"); got != "Nguon tham khao" {
		t.Fatalf("FoldAccents = %q", got)
	}
	if got := FoldAccents("Tài liệu tham khảo"); got != "Tai lieu tham khao" {
		t.Fatalf("FoldAccents = %q", got)
	}
}

func TestStripReferenceSection(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			"vietnamese heading",
			"Câu trả lời chính.\n\nNguồn tham khảo:\n1) Báo A - https://a.vn",
			"Câu trả lời chính.",
		},
		{
			"accentless heading",
			"Nội dung.\nNGUON THAM KHAO\nhttps://b.vn",
			"Nội dung.",
		},
		{
			"bold english heading",
			"Answer body.\n\n**Sources:**\n- https://c.vn",
			"Answer body.",
		},
		{
			"no heading untouched",
			"Chỉ có câu trả lời, không có nguồn nào được liệt kê ở cuối.",
			"Chỉ có câu trả lời, không có nguồn nào được liệt kê ở cuối.",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripReferenceSection(tc.in); got != tc.want {
				t.Fatalf("StripReferenceSection = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestStripReferenceSectionIgnoresLongLines(t *testing.T) {
	in := "Phần đầu.\nNguồn tham khảo là khái niệm quan trọng trong nghiên cứu khoa học hiện đại."
	if got := StripReferenceSection(in); got != in {
		t.Fatalf("long sentence treated as heading: %q", got)
	}
	if !strings.Contains(in, "Nguồn") {
		t.Fatal("test fixture broken")
	}
}
