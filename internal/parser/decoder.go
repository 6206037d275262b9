package parser

import (
	"mime"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Decode 将原始字节解码为字符串
//
// 解码策略(启发式,不是权威判断):
//  1. Content-Type声明了非UTF-8字符集 -> 直接按该字符集解码
//  2. 否则按UTF-8解码; 结果中出现替换字符(U+FFFD)时,改用EUC-KR(CP949)重新解码并采用该结果
//
// 任何输入都不会返回错误,最坏情况下结果中包含替换字符
func Decode(body []byte, contentType string) string {
	if enc := declaredEncoding(contentType); enc != nil {
		if s, err := decodeWith(enc, body); err == nil {
			return s
		}
	}

	s := strings.ToValidUTF8(string(body), string(utf8.RuneError))
	if !strings.ContainsRune(s, utf8.RuneError) {
		return s
	}

	if legacy, err := decodeWith(korean.EUCKR, body); err == nil {
		return legacy
	}
	return s
}

// declaredEncoding 返回Content-Type中声明的非UTF-8编码,未声明或为UTF-8时返回nil
func declaredEncoding(contentType string) encoding.Encoding {
	label := charsetLabel(contentType)
	if label == "" {
		return nil
	}

	enc, name := charset.Lookup(label)
	if enc != nil {
		if name == "utf-8" {
			return nil
		}
		return enc
	}

	// htmlindex不认识的韩文别名
	switch {
	case strings.Contains(label, "949"), strings.Contains(label, "5601"), strings.Contains(label, "euc"):
		return korean.EUCKR
	}
	return nil
}

// charsetLabel 提取Content-Type中的charset参数(小写)
func charsetLabel(contentType string) string {
	if contentType == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		return strings.ToLower(strings.TrimSpace(params["charset"]))
	}

	// 格式不规范时退化为手工查找
	lower := strings.ToLower(contentType)
	idx := strings.Index(lower, "charset=")
	if idx < 0 {
		return ""
	}
	label := lower[idx+len("charset="):]
	if end := strings.IndexAny(label, "; "); end >= 0 {
		label = label[:end]
	}
	return strings.Trim(label, `"'`)
}

func decodeWith(enc encoding.Encoding, body []byte) (string, error) {
	out, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
