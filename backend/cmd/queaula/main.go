// Command queaula 课程数据管理工具：迁移、导入种子数据、清空数据
package main

func main() {
	Execute()
}
