package services

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"goalscan-service/apifootball"
	"goalscan-service/pkg/models"
)

// 滚球盘固定市场 ID
const (
	LiveMarketAsianHandicap  = 33 // 亚洲让球
	LiveMarketOverUnder      = 36 // 大小球
	LiveMarketFulltimeResult = 59 // 全场 1X2
	LiveMarketTotalGoals     = 25 // 总进球数(大小球缺失时的后备市场)
)

// 赛前盘市场 ID
const (
	PreMatchBetMatchWinner   = 1 // Match Winner
	PreMatchBetAsianHandicap = 4 // Asian Handicap
	PreMatchBetOverUnder     = 5 // Goals Over/Under
)

// preferredBookmakers 赛前盘庄家优先级(按可靠性排序)
// 8=Bet365, 11=1xBet, 6=Bwin, 2=Marathonbet, 16=Unibet
var preferredBookmakers = []int{8, 11, 6, 2, 16}

// mainLinePreference 主盘口线推断的固定优先顺序
// 上游未显式标记主盘时,按该顺序探测第一条两侧都有价的线
var mainLinePreference = []float64{2.5, 2.25, 2.0, 1.75, 1.5, 2.75, 3.0, 3.5}

// OddsParser 赔率解析器
//
// 将两种互不兼容的上游盘口结构(赛前庄家盘/滚球平铺盘)归一化为统一的
// OddsSnapshot。纯函数,不做 I/O,任何畸形输入都返回 EMPTY 快照而不是报错。
type OddsParser struct{}

// NewOddsParser 创建赔率解析器
func NewOddsParser() *OddsParser {
	return &OddsParser{}
}

// Parse 解析一份原始赔率载荷,返回恰好一个快照
//
// currentMinute 为可选的当前比赛分钟提示(无则传 0),仅在主盘口线
// 推断的最后一级后备策略中使用。
func (p *OddsParser) Parse(payload *apifootball.OddsPayload, currentMinute int) *models.OddsSnapshot {
	if payload.Empty() {
		return models.EmptySnapshot(0, payload.IsLive(), models.FetchStatusEmpty)
	}

	var snapshot *models.OddsSnapshot
	if payload.IsLive() {
		snapshot = p.parseLive(payload.Live, currentMinute)
	} else {
		snapshot = p.parsePreMatch(payload.PreMatch, currentMinute)
	}

	// 边界策略: 1X2 主胜价 / 主盘口线价 / 让球线 至少一项非空才算抓取成功,
	// 防止"盘口存在但全部封盘"的载荷被当成可用数据
	if !snapshot.HasAnyMarket() {
		empty := models.EmptySnapshot(snapshot.FixtureID, snapshot.IsLive, models.FetchStatusEmpty)
		empty.Bookmaker = snapshot.Bookmaker
		return empty
	}

	snapshot.Status = models.FetchStatusSuccess
	snapshot.RawAvailable = true
	return snapshot
}

// parseLive 解析滚球平铺盘
func (p *OddsParser) parseLive(live *apifootball.LiveOdds, currentMinute int) *models.OddsSnapshot {
	snapshot := &models.OddsSnapshot{
		FixtureID:  live.Fixture.ID,
		IsLive:     true,
		CapturedAt: time.Now(),
		Status:     models.FetchStatusEmpty,
	}

	// 大小球: 固定市场 36,缺失时退回总进球市场 25
	ouMarket := findLiveMarket(live.Odds, LiveMarketOverUnder)
	if ouMarket == nil {
		ouMarket = findLiveMarket(live.Odds, LiveMarketTotalGoals)
	}
	if ouMarket != nil {
		snapshot.Lines = collectLiveLines(ouMarket)
		snapshot.MainLine = resolveMainLine(snapshot.Lines, mainLinePreference, currentMinute)
		p.fillFixedLines(snapshot)
	}

	// 亚洲让球: 优先显式标记 main 的结果对,否则取第一组未封盘的对子
	if ahMarket := findLiveMarket(live.Odds, LiveMarketAsianHandicap); ahMarket != nil {
		line, home, away := resolveLiveHandicap(ahMarket)
		snapshot.HandicapLine = line
		snapshot.HandicapHome = home
		snapshot.HandicapAway = away
	}

	// 1X2: 固定市场 59,封盘结果一律排除
	if resultMarket := findLiveMarket(live.Odds, LiveMarketFulltimeResult); resultMarket != nil {
		for _, v := range resultMarket.Values {
			if v.Suspended {
				continue
			}
			price := parsePrice(v.Odd)
			switch strings.ToLower(v.Value) {
			case "home", "1":
				snapshot.Home = price
			case "draw", "x":
				snapshot.Draw = price
			case "away", "2":
				snapshot.Away = price
			}
		}
	}

	return snapshot
}

// parsePreMatch 解析赛前庄家盘
func (p *OddsParser) parsePreMatch(pre *apifootball.PreMatchOdds, currentMinute int) *models.OddsSnapshot {
	snapshot := &models.OddsSnapshot{
		FixtureID:  pre.Fixture.ID,
		IsLive:     false,
		CapturedAt: time.Now(),
		Status:     models.FetchStatusEmpty,
	}

	bookmaker := selectBookmaker(pre.Bookmakers)
	if bookmaker == nil {
		return snapshot
	}
	snapshot.Bookmaker = bookmaker.Name

	for _, bet := range bookmaker.Bets {
		switch bet.ID {
		case PreMatchBetMatchWinner:
			for _, v := range bet.Values {
				price := parsePrice(v.Odd)
				switch strings.ToLower(v.Value) {
				case "home", "1":
					snapshot.Home = price
				case "draw", "x":
					snapshot.Draw = price
				case "away", "2":
					snapshot.Away = price
				}
			}

		case PreMatchBetOverUnder:
			snapshot.Lines = collectPreMatchLines(bet.Values)
			snapshot.MainLine = resolveMainLine(snapshot.Lines, mainLinePreference, currentMinute)
			p.fillFixedLines(snapshot)

		case PreMatchBetAsianHandicap:
			// 赛前盘很少提供结构化线值,让球线要从带符号的文本标签里解析
			line, home, away := resolvePreMatchHandicap(bet.Values)
			snapshot.HandicapLine = line
			snapshot.HandicapHome = home
			snapshot.HandicapAway = away
		}
	}

	return snapshot
}

// fillFixedLines 从已收集的盘口线里提取 1.5/2.5/3.5 固定线位
func (p *OddsParser) fillFixedLines(snapshot *models.OddsSnapshot) {
	for i := range snapshot.Lines {
		l := &snapshot.Lines[i]
		switch l.Line {
		case 1.5:
			snapshot.Over15 = l.Over
			snapshot.Under15 = l.Under
		case 2.5:
			snapshot.Over25 = l.Over
			snapshot.Under25 = l.Under
		case 3.5:
			snapshot.Over35 = l.Over
			snapshot.Under35 = l.Under
		}
	}
}

// findLiveMarket 按固定市场 ID 查找滚球市场
func findLiveMarket(markets []apifootball.LiveBet, id int) *apifootball.LiveBet {
	for i := range markets {
		if markets[i].ID == id {
			return &markets[i]
		}
	}
	return nil
}

// collectLiveLines 收集滚球大小球的全部 (线值, 大, 小) 三元组
// 去重后按线值升序排列,封盘结果不参与
func collectLiveLines(market *apifootball.LiveBet) []models.OverUnderLine {
	byLine := make(map[float64]*models.OverUnderLine)

	for _, v := range market.Values {
		if v.Suspended || v.Handicap == nil {
			continue
		}
		line, ok := parseLineValue(*v.Handicap)
		if !ok {
			continue
		}

		entry := byLine[line]
		if entry == nil {
			entry = &models.OverUnderLine{Line: line}
			byLine[line] = entry
		}

		price := parsePrice(v.Odd)
		switch strings.ToLower(v.Value) {
		case "over":
			entry.Over = price
		case "under":
			entry.Under = price
		}
		if v.Main != nil && *v.Main {
			entry.IsMain = true
		}
	}

	return sortLines(byLine)
}

// collectPreMatchLines 从 "Over 2.5"/"Under 2.5" 形式的标签收集盘口线
func collectPreMatchLines(values []apifootball.BetValue) []models.OverUnderLine {
	byLine := make(map[float64]*models.OverUnderLine)

	for _, v := range values {
		label := strings.ToLower(strings.TrimSpace(v.Value))
		var side string
		switch {
		case strings.HasPrefix(label, "over"):
			side = "over"
		case strings.HasPrefix(label, "under"):
			side = "under"
		default:
			continue
		}

		line, ok := parseLineValue(strings.TrimSpace(strings.TrimPrefix(label, side)))
		if !ok {
			continue
		}

		entry := byLine[line]
		if entry == nil {
			entry = &models.OverUnderLine{Line: line}
			byLine[line] = entry
		}

		price := parsePrice(v.Odd)
		if side == "over" {
			entry.Over = price
		} else {
			entry.Under = price
		}
	}

	return sortLines(byLine)
}

// sortLines map 转为按线值升序的切片
func sortLines(byLine map[float64]*models.OverUnderLine) []models.OverUnderLine {
	lines := make([]models.OverUnderLine, 0, len(byLine))
	for _, l := range byLine {
		lines = append(lines, *l)
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Line < lines[j].Line })
	return lines
}

// resolveMainLine 主盘口线推断
//
// 推断顺序是文档化的固定策略,不是错误处理:
//  1. 上游显式标记 main 且两侧有价的线
//  2. 按固定优先顺序探测第一条两侧都有价的线
//  3. 仍无结果时取距目标线值最近的已定价线
//     (75 分钟以后目标降为 1.5,其余为 2.5)
func resolveMainLine(lines []models.OverUnderLine, priority []float64, currentMinute int) *models.OverUnderLine {
	for i := range lines {
		if lines[i].IsMain && lines[i].Priced() {
			return &lines[i]
		}
	}

	for _, want := range priority {
		for i := range lines {
			if lines[i].Line == want && lines[i].Priced() {
				return &lines[i]
			}
		}
	}

	target := 2.5
	if currentMinute >= 75 {
		target = 1.5
	}
	var best *models.OverUnderLine
	bestDist := 0.0
	for i := range lines {
		if !lines[i].Priced() {
			continue
		}
		dist := lines[i].Line - target
		if dist < 0 {
			dist = -dist
		}
		if best == nil || dist < bestDist {
			best = &lines[i]
			bestDist = dist
		}
	}
	return best
}

// resolveLiveHandicap 解析滚球让球盘
func resolveLiveHandicap(market *apifootball.LiveBet) (line, home, away *float64) {
	// 先找显式标记 main 的对子
	if l, h, a := pickHandicapPair(market.Values, true); l != nil {
		return l, h, a
	}
	// 否则取第一组未封盘的对子
	return pickHandicapPair(market.Values, false)
}

// pickHandicapPair 从让球盘结果里取一组 (线值, 主, 客)
func pickHandicapPair(values []apifootball.LiveBetValue, mainOnly bool) (line, home, away *float64) {
	byLine := make(map[float64][2]*float64)
	order := make([]float64, 0, 4)

	for _, v := range values {
		if v.Suspended || v.Handicap == nil {
			continue
		}
		if mainOnly && (v.Main == nil || !*v.Main) {
			continue
		}
		l, ok := parseLineValue(*v.Handicap)
		if !ok {
			continue
		}
		pair, seen := byLine[l]
		if !seen {
			order = append(order, l)
		}
		price := parsePrice(v.Odd)
		switch strings.ToLower(v.Value) {
		case "home":
			pair[0] = price
		case "away":
			pair[1] = price
		}
		byLine[l] = pair
	}

	for _, l := range order {
		pair := byLine[l]
		if pair[0] != nil && pair[1] != nil {
			lv := l
			return &lv, pair[0], pair[1]
		}
	}
	return nil, nil, nil
}

// resolvePreMatchHandicap 从 "Home -1.5" 形式的文本标签解析让球盘
func resolvePreMatchHandicap(values []apifootball.BetValue) (line, home, away *float64) {
	byLine := make(map[float64][2]*float64)
	order := make([]float64, 0, 4)

	for _, v := range values {
		label := strings.TrimSpace(v.Value)
		lower := strings.ToLower(label)

		var sideIdx int
		var rest string
		switch {
		case strings.HasPrefix(lower, "home"):
			sideIdx = 0
			rest = strings.TrimSpace(label[len("home"):])
		case strings.HasPrefix(lower, "away"):
			sideIdx = 1
			rest = strings.TrimSpace(label[len("away"):])
		default:
			continue
		}

		l, ok := parseLineValue(rest)
		if !ok {
			continue
		}
		// 统一以主队视角表示线值
		if sideIdx == 1 {
			l = -l
		}

		pair, seen := byLine[l]
		if !seen {
			order = append(order, l)
		}
		pair[sideIdx] = parsePrice(v.Odd)
		byLine[l] = pair
	}

	for _, l := range order {
		pair := byLine[l]
		if pair[0] != nil && pair[1] != nil {
			lv := l
			return &lv, pair[0], pair[1]
		}
	}
	return nil, nil, nil
}

// selectBookmaker 按固定优先级选择庄家,兜底取第一家有定价盘口的庄家
func selectBookmaker(bookmakers []apifootball.BookmakerOdds) *apifootball.BookmakerOdds {
	for _, preferred := range preferredBookmakers {
		for i := range bookmakers {
			if bookmakers[i].ID == preferred && bookmakerHasPrices(&bookmakers[i]) {
				return &bookmakers[i]
			}
		}
	}

	for i := range bookmakers {
		if bookmakerHasPrices(&bookmakers[i]) {
			return &bookmakers[i]
		}
	}
	return nil
}

// bookmakerHasPrices 庄家是否存在任一已定价盘口
func bookmakerHasPrices(b *apifootball.BookmakerOdds) bool {
	for _, bet := range b.Bets {
		for _, v := range bet.Values {
			if parsePrice(v.Odd) != nil {
				return true
			}
		}
	}
	return false
}

// parsePrice 解析赔率字符串,非法或非正值返回 nil
func parsePrice(odd string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(odd), 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

// parseLineValue 解析线值字符串("2.5" / "+1.5" / "-2")
func parseLineValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
