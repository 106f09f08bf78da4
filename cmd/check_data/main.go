// check_data 校验 data/ 下的地图和动画规则
//
// 用法:
//
//	go run ./cmd/check_data [data 目录]
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gonewx/gridworld/pkg/anim"
	"github.com/gonewx/gridworld/pkg/config"
	"github.com/gonewx/gridworld/pkg/script"
	"github.com/gonewx/gridworld/pkg/world"
)

func main() {
	root := "data"
	if len(os.Args) > 1 {
		root = os.Args[1]
	}

	failed := 0
	for _, r := range checkDir(root) {
		if r.Err != nil {
			fmt.Printf("❌ %s: %v\n", r.Path, r.Err)
			failed++
			continue
		}
		fmt.Printf("✅ %s: %s\n", r.Path, r.Summary)
	}
	if failed > 0 {
		fmt.Printf("❌ %d 个文件校验失败\n", failed)
		os.Exit(1)
	}
}

// result 单个文件的校验结果
type result struct {
	Path    string
	Summary string
	Err     error
}

// checkDir 校验 root/maps/*.yaml 和 root/anim/*.yaml
func checkDir(root string) []result {
	var results []result

	maps, _ := filepath.Glob(filepath.Join(root, "maps", "*.yaml"))
	for _, path := range maps {
		results = append(results, checkMap(path))
	}
	machines, _ := filepath.Glob(filepath.Join(root, "anim", "*.yaml"))
	for _, path := range machines {
		results = append(results, checkMachine(path))
	}
	if len(results) == 0 {
		results = append(results, result{Path: root, Err: fmt.Errorf("no maps or animation rules found")})
	}
	return results
}

func checkMap(path string) result {
	cfg, err := config.LoadMapConfig(path)
	if err != nil {
		return result{Path: path, Err: err}
	}
	g, err := world.LoadGrid(cfg)
	if err != nil {
		return result{Path: path, Err: err}
	}
	start := world.MapPos(cfg, cfg.Player)
	if _, ok := g.GetCell(start); !ok {
		return result{Path: path, Err: fmt.Errorf("player start %v is not a cell", start)}
	}
	return result{Path: path, Summary: fmt.Sprintf("%d cells, %d markers", g.Len(), len(cfg.Markers))}
}

func checkMachine(path string) result {
	def, err := config.LoadMachineDef(path)
	if err != nil {
		return result{Path: path, Err: err}
	}
	engine := script.NewEngine(nil)
	defer engine.Close()
	rules, initial, err := anim.LoadScriptedRules(def, engine)
	if err != nil {
		return result{Path: path, Err: err}
	}
	return result{Path: path, Summary: fmt.Sprintf("%d rules, initial %s", len(rules), initial)}
}
