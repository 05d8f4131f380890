package service

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/go-pdf/fpdf"
	"github.com/linkfolio/internal/db"
	qrcode "github.com/skip2/go-qrcode"
)

// vCard 中备注字段的最大长度，超长的简介会被截断。
const vcardNoteLimit = 500

// ExportService 把主页数据投影为 QR 图片、vCard 名片与 PDF 摘要。
// 所有导出都是只读的纯函数，失败以错误形式上报而不影响任何状态。
type ExportService struct {
	baseURL string
}

// NewExportService 构造 ExportService，baseURL 是站点对外的根地址。
func NewExportService(baseURL string) *ExportService {
	return &ExportService{baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// ProfileURL 返回主页的公开访问地址。
func (s *ExportService) ProfileURL(profile *db.Profile) string {
	return fmt.Sprintf("%s/p/%s", s.baseURL, profile.Slug)
}

// QRCode 把主页公开地址编码为 PNG 二维码。
func (s *ExportService) QRCode(profile *db.Profile, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}

	png, err := qrcode.Encode(s.ProfileURL(profile), qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr code: %w", err)
	}
	return png, nil
}

// VCard 生成包含姓名、头衔、邮箱、电话、截断简介与主页地址的名片文件。
func (s *ExportService) VCard(profile *db.Profile) ([]byte, error) {
	card := make(vcard.Card)

	name := strings.TrimSpace(profile.Name)
	if name == "" {
		name = profile.Slug
	}
	card.SetValue(vcard.FieldFormattedName, name)
	card.AddName(splitDisplayName(name))

	if title := strings.TrimSpace(profile.Title); title != "" {
		card.SetValue(vcard.FieldTitle, title)
	}
	if email := strings.TrimSpace(profile.Email); email != "" {
		card.SetValue(vcard.FieldEmail, email)
	}
	if phone := strings.TrimSpace(profile.Phone); phone != "" {
		card.SetValue(vcard.FieldTelephone, phone)
	}
	if note := truncateRunes(strings.TrimSpace(profile.Biography), vcardNoteLimit); note != "" {
		card.SetValue(vcard.FieldNote, note)
	}
	card.SetValue(vcard.FieldURL, s.ProfileURL(profile))

	vcard.ToV4(card)

	var buf bytes.Buffer
	if err := vcard.NewEncoder(&buf).Encode(card); err != nil {
		return nil, fmt.Errorf("encode vcard: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF 渲染一页式主页摘要，主色作为强调色贯穿标题与链接区块。
func (s *ExportService) PDF(profile *db.Profile, links []db.Link) ([]byte, error) {
	accentR, accentG, accentB, err := hexToRGB(profile.ColorPrimary)
	if err != nil {
		accentR, accentG, accentB = 0, 31, 63
	}

	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(profile.Name, true)
	doc.AddPage()

	doc.SetTextColor(accentR, accentG, accentB)
	doc.SetFont("Helvetica", "B", 22)
	doc.CellFormat(0, 12, profile.Name, "", 1, "L", false, 0, "")

	if title := strings.TrimSpace(profile.Title); title != "" {
		doc.SetTextColor(80, 80, 80)
		doc.SetFont("Helvetica", "I", 13)
		doc.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	}

	doc.Ln(2)
	doc.SetDrawColor(accentR, accentG, accentB)
	doc.SetLineWidth(0.6)
	left, y := doc.GetX(), doc.GetY()
	doc.Line(left, y, left+60, y)
	doc.Ln(4)

	doc.SetTextColor(40, 40, 40)
	doc.SetFont("Helvetica", "", 11)
	if email := strings.TrimSpace(profile.Email); email != "" {
		doc.CellFormat(0, 6, "Email: "+email, "", 1, "L", false, 0, "")
	}
	if phone := strings.TrimSpace(profile.Phone); phone != "" {
		doc.CellFormat(0, 6, "Tel: "+phone, "", 1, "L", false, 0, "")
	}
	doc.CellFormat(0, 6, s.ProfileURL(profile), "", 1, "L", false, 0, "")

	if bio := strings.TrimSpace(profile.Biography); bio != "" {
		doc.Ln(4)
		doc.SetFont("Helvetica", "", 10)
		doc.MultiCell(0, 5, bio, "", "L", false)
	}

	if len(links) > 0 {
		doc.Ln(4)
		doc.SetTextColor(accentR, accentG, accentB)
		doc.SetFont("Helvetica", "B", 12)
		doc.CellFormat(0, 8, "Links", "", 1, "L", false, 0, "")

		doc.SetTextColor(40, 40, 40)
		doc.SetFont("Helvetica", "", 10)
		for _, link := range links {
			doc.CellFormat(0, 6, fmt.Sprintf("%s - %s", link.Name, link.URL), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func splitDisplayName(display string) *vcard.Name {
	parts := strings.Fields(display)
	name := &vcard.Name{}
	switch len(parts) {
	case 0:
	case 1:
		name.GivenName = parts[0]
	default:
		name.GivenName = parts[0]
		name.FamilyName = strings.Join(parts[1:], " ")
	}
	return name
}

func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func hexToRGB(hex string) (int, int, int, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(trimmed) != 6 {
		return 0, 0, 0, fmt.Errorf("malformed hex color %q", hex)
	}

	value, err := strconv.ParseUint(trimmed, 16, 32)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("malformed hex color %q", hex)
	}

	return int(value >> 16 & 0xFF), int(value >> 8 & 0xFF), int(value & 0xFF), nil
}
