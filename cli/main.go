package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

func main() {
	// 1. 定义命令行参数
	server := flag.String("server", "http://localhost:8888", "服务地址")
	action := flag.String("action", "validate", "操作: confirmations, validate, verify, verify_data, fee, events, history")
	chain := flag.String("chain", "BSC", "区块链 (例如: BSC, ETH)")
	txHash := flag.String("tx", "", "交易哈希")
	receiver := flag.String("receiver", "", "收款地址 (verify_data)")
	amount := flag.String("amount", "", "转账数量，按 decimals 换算后的值 (verify_data)")
	token := flag.String("token", "", "代币合约地址，为空表示原生币")
	threshold := flag.Uint64("threshold", 0, "确认数 (confirmations)")
	timeout := flag.Int64("timeout", 120, "等待超时秒数")
	flag.Parse()

	if *txHash == "" && *action != "history" {
		log.Fatal("错误: 必须指定 -tx")
	}

	// 2. 准备请求数据
	requestData := map[string]interface{}{
		"chain":           *chain,
		"tx_hash":         *txHash,
		"timeout_seconds": *timeout,
	}
	switch *action {
	case "confirmations":
		if *threshold > 0 {
			requestData["threshold"] = *threshold
		}
	case "verify":
		requestData["token_address"] = *token
	case "verify_data":
		requestData["receiver"] = *receiver
		requestData["amount"] = *amount
		requestData["token_address"] = *token
	case "validate", "fee", "events", "history":
	default:
		log.Fatalf("错误: 未知操作 %s", *action)
	}

	jsonData, err := json.Marshal(requestData)
	if err != nil {
		log.Fatalf("错误: 无法打包 JSON 数据: %v", err)
	}

	// 3. 创建并发送 HTTP POST 请求
	url := fmt.Sprintf("%s/api/tx/%s", *server, *action)
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		log.Fatalf("错误: 无法创建请求: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: time.Duration(*timeout+10) * time.Second}
	fmt.Printf("正向 %s 发送请求...\n", url)
	fmt.Printf("请求体: %s\n", string(jsonData))

	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("错误: 发送请求失败: %v", err)
	}
	defer resp.Body.Close()

	// 4. 读取并打印响应结果
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("错误: 读取响应体失败: %v", err)
	}

	fmt.Println("\n--- 响应结果 ---")
	fmt.Printf("HTTP 状态码: %d\n", resp.StatusCode)
	fmt.Printf("响应体: %s\n", string(body))
}
